package server

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"socialfeed/internal/config"
	"socialfeed/internal/service"
	"socialfeed/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		Env:                "test",
		LogLevel:           "error",
		StoreDriver:        driver,
		StoreNamespace:     "srvtest",
		TracingExporter:    "stdout",
		TracingSampleRatio: 1,
	}
}

// exercise runs a small follow/post round trip against srv.
func exercise(t *testing.T, srv *Server) {
	t.Helper()
	ctx := context.Background()
	svc := srv.Services()

	a, err := svc.Users.CreateUser(ctx, service.CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	b, err := svc.Users.CreateUser(ctx, service.CreateUserInput{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = svc.Follows.ToggleFollow(ctx, service.Session{UserID: a.ID}, b.ID)
	require.NoError(t, err)
	_, err = svc.Posts.CreatePost(ctx, service.Session{UserID: b.ID}, service.CreatePostInput{Text: "hello world"})
	require.NoError(t, err)

	inbox, err := svc.Notifications.Inbox(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}

func TestNewServer_Memory(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(config.DriverMemory))
	require.NoError(t, err)
	assert.Nil(t, srv.Notifier())
	exercise(t, srv)
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestNewServer_BadgerPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverBadger)
	cfg.BadgerPath = filepath.Join(t.TempDir(), "badger")

	srv, err := NewServer(ctx, cfg)
	require.NoError(t, err)
	exercise(t, srv)
	require.NoError(t, srv.Shutdown(ctx))

	reopened, err := NewServer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Shutdown(ctx) })
	posts, err := reopened.Services().Posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestNewServer_SQLite(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "feed.db")

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	exercise(t, srv)
}

func TestNewServer_RedisStoreAndPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.DriverRedis)
	cfg.RedisURL = mr.Addr()
	cfg.PublishNotifications = true

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, srv.Notifier())
	assert.False(t, srv.ownsRedis)
	exercise(t, srv)

	keys := store.Keys{Namespace: "srvtest"}
	assert.True(t, mr.Exists(keys.Posts()))
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestNewServer_PublisherOwnsSeparateClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.DriverMemory)
	cfg.RedisURL = mr.Addr()
	cfg.PublishNotifications = true

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, srv.ownsRedis)
	exercise(t, srv)
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestNewServer_Errors(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := NewServer(context.Background(), testConfig("cassandra"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("sql connect failure", func(t *testing.T) {
		orig := connectSQL
		t.Cleanup(func() { connectSQL = orig })
		connectSQL = func(*config.Config) (*gorm.DB, error) { return nil, errors.New("refused") }

		cfg := testConfig(config.DriverPostgres)
		cfg.DBHost, cfg.DBName = "localhost", "feed"
		_, err := NewServer(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("redis unreachable", func(t *testing.T) {
		cfg := testConfig(config.DriverRedis)
		cfg.RedisURL = "127.0.0.1:1"
		_, err := NewServer(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis connection failed")
	})
}
