package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"socialfeed/internal/config"
	"socialfeed/internal/feed"
	"socialfeed/internal/models"
	"socialfeed/internal/notifications"
	"socialfeed/internal/observability"
	"socialfeed/internal/seed"
	"socialfeed/internal/server"
	"socialfeed/internal/service"

	"github.com/spf13/cobra"
)

type app struct {
	loadConfig func() (*config.Config, error)
	newServer  func(context.Context, *config.Config) (*server.Server, error)

	srv *server.Server
	as  string
}

func (a *app) services() *service.Services { return a.srv.Services() }

func (a *app) session() (service.Session, error) {
	if a.as == "" {
		return service.Session{}, errors.New("--as <user id> is required")
	}
	return service.Session{UserID: a.as}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "feedctl",
		Short:         "Inspect and drive the social feed engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(observability.WithCorrelationID(cmd.Context(), observability.GenerateCorrelationID()))
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			srv, err := a.newServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			a.srv = srv
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.srv == nil {
				return nil
			}
			return a.srv.Shutdown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.as, "as", "", "user id to act as")

	root.AddCommand(
		newSeedCmd(a),
		newUsersCmd(a),
		newSignupCmd(a),
		newFollowCmd(a),
		newPostCmd(a),
		newLikeCmd(a),
		newCommentCmd(a),
		newDeleteCmd(a),
		newFeedCmd(a),
		newSearchCmd(a),
		newInboxCmd(a),
		newWatchCmd(a),
	)
	return root
}

func newSeedCmd(a *app) *cobra.Command {
	var (
		fixture  string
		randSeed int64
		opts     = seed.DefaultOptions()
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML fixture or generated demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fx *seed.Fixture
			if fixture != "" {
				var err error
				if fx, err = seed.LoadFixtureFile(fixture); err != nil {
					return err
				}
			} else {
				fx = seed.NewGenerator(randSeed).Fixture(opts)
			}
			sum, err := seed.NewSeeder(a.services()).Apply(cmd.Context(), fx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "path to a YAML fixture")
	cmd.Flags().Int64Var(&randSeed, "seed", 1, "random seed for generated data")
	cmd.Flags().IntVar(&opts.Users, "users", opts.Users, "number of users to generate")
	cmd.Flags().IntVar(&opts.Posts, "posts", opts.Posts, "number of posts to generate")
	return cmd
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users, or follow suggestions when --as is set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.as != "" {
				suggestions, err := a.services().Follows.Suggestions(cmd.Context(), service.Session{UserID: a.as})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), suggestions)
			}
			users, err := a.services().Users.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), users)
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var in service.CreateUserInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.services().Users.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Handle, "handle", "", "handle (defaults from username)")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short bio")
	return cmd
}

func newFollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user id>",
		Short: "Toggle following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			res, err := a.services().Follows.ToggleFollow(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newPostCmd(a *app) *cobra.Command {
	var in service.CreatePostInput
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create a post",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			res, err := a.services().Posts.CreatePost(cmd.Context(), sess, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&in.Text, "text", "", "post text")
	cmd.Flags().StringVar(&in.ImageRef, "image", "", "image reference")
	return cmd
}

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post id>",
		Short: "Toggle liking a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			res, err := a.services().Posts.ToggleLike(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post id> <text>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			res, err := a.services().Posts.AddComment(cmd.Context(), sess, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			outcome, err := a.services().Posts.DeletePost(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]service.DeleteOutcome{"outcome": outcome})
		},
	}
}

func newFeedCmd(a *app) *cobra.Command {
	var scope, sortMode, term string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Compose the feed for the --as user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.services().Queries.Feed(cmd.Context(), a.as, feed.Query{
				Scope:  feed.ParseScope(scope),
				Search: term,
				Sort:   feed.ParseSortMode(sortMode),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), posts)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", string(feed.ScopeHome), "home or feed")
	cmd.Flags().StringVar(&sortMode, "sort", string(feed.SortLatest), "latest, oldest or most-liked")
	cmd.Flags().StringVar(&term, "search", "", "filter by term")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search users, posts and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.services().Queries.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if limit > 0 {
				res = res.Truncate(limit)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "max results per list (0 for all)")
	return cmd
}

func newInboxCmd(a *app) *cobra.Command {
	var markRead, clearInbox bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show the --as user's notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			notes := a.services().Notifications
			switch {
			case clearInbox:
				err = notes.Clear(cmd.Context(), sess.UserID)
			case markRead:
				err = notes.MarkAllRead(cmd.Context(), sess.UserID)
			}
			if err != nil {
				return err
			}
			list, err := notes.Inbox(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"unread":        models.UnreadCount(list),
				"notifications": list,
			})
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "mark every notification read")
	cmd.Flags().BoolVar(&clearInbox, "clear", false, "discard the inbox")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream published notifications until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n := a.srv.Notifier()
			if n == nil {
				return errors.New("notification publishing is disabled; set PUBLISH_NOTIFICATIONS=true")
			}
			out := cmd.OutOrStdout()
			if err := n.StartPatternSubscriber(cmd.Context(), func(p notifications.Payload) {
				_ = printJSON(out, p)
			}); err != nil {
				return err
			}
			<-cmd.Context().Done()
			return nil
		},
	}
}
