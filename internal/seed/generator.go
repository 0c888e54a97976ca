package seed

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
)

// Options sizes a generated fixture.
type Options struct {
	Users int
	Posts int
	// MaxFollows caps how many users each generated user follows.
	MaxFollows int
	// MaxLikes and MaxComments cap engagement per post.
	MaxLikes    int
	MaxComments int
}

// DefaultOptions is a small but busy social graph.
func DefaultOptions() Options {
	return Options{Users: 12, Posts: 40, MaxFollows: 5, MaxLikes: 6, MaxComments: 3}
}

// Generator produces random fixtures. The same seed always yields the same fixture.
type Generator struct {
	faker *gofakeit.Faker
}

func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Fixture builds a fixture sized by opts.
func (g *Generator) Fixture(opts Options) *Fixture {
	f := g.faker
	fx := &Fixture{}
	if opts.Users <= 0 {
		return fx
	}

	keys := make([]string, opts.Users)
	for i := range keys {
		keys[i] = fmt.Sprintf("user%d", i+1)
	}

	for i, key := range keys {
		first, last := f.FirstName(), f.LastName()
		u := FixtureUser{
			Key:      key,
			Username: first + " " + last,
			Email:    fmt.Sprintf("%s.%s.%d@example.com", emailPart(first), emailPart(last), i+1),
			Bio:      f.Sentence(8),
		}
		if f.Bool() {
			u.PhotoRef = fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.UUID())
		}
		u.Follows = g.pick(keys, key, f.Number(0, opts.MaxFollows))
		fx.Users = append(fx.Users, u)
	}

	for i := 0; i < opts.Posts; i++ {
		author := keys[f.Number(0, len(keys)-1)]
		p := FixturePost{
			Key:    fmt.Sprintf("post%d", i+1),
			Author: author,
			Text:   f.Sentence(f.Number(4, 16)),
			Likes:  g.pick(keys, "", f.Number(0, opts.MaxLikes)),
		}
		if f.Number(0, 3) == 0 {
			p.ImageRef = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.UUID())
		}
		for j, n := 0, f.Number(0, opts.MaxComments); j < n; j++ {
			p.Comments = append(p.Comments, FixtureComment{
				Author: keys[f.Number(0, len(keys)-1)],
				Text:   f.Sentence(f.Number(2, 10)),
			})
		}
		fx.Posts = append(fx.Posts, p)
	}
	return fx
}

// pick returns up to n distinct keys other than exclude.
func (g *Generator) pick(keys []string, exclude string, n int) []string {
	pool := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != exclude {
			pool = append(pool, k)
		}
	}
	g.faker.ShuffleStrings(pool)
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil
	}
	return pool[:n]
}

// emailPart lowercases name and drops anything but ASCII letters.
func emailPart(name string) string {
	part := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, name)
	if part == "" {
		return "user"
	}
	return part
}
