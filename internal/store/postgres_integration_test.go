package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func postgresDSN(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnvOrDefault("DB_USER", "user"),
		getEnvOrDefault("DB_PASSWORD", "password"),
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		dbName,
	)
}

// openEphemeralPostgres creates a throwaway database and returns a migrated gorm handle.
// Set POSTGRES_INTEGRATION=1 to run against a live server.
func openEphemeralPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() || os.Getenv("POSTGRES_INTEGRATION") != "1" {
		t.Skip("set POSTGRES_INTEGRATION=1 to run postgres integration tests")
	}

	maint, err := sql.Open("pgx", postgresDSN("postgres"))
	require.NoError(t, err, "open maintenance db")
	t.Cleanup(func() { _ = maint.Close() })

	dbName := fmt.Sprintf("socialfeed_it_%d", time.Now().UnixNano())
	ctx := context.Background()
	_, err = maint.ExecContext(ctx, `CREATE DATABASE `+dbName)
	require.NoError(t, err, "create ephemeral db")
	t.Cleanup(func() {
		_, _ = maint.ExecContext(ctx, `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1`, dbName)
		_, _ = maint.ExecContext(ctx, `DROP DATABASE IF EXISTS `+dbName)
	})

	db, err := gorm.Open(postgres.Open(postgresDSN(dbName)), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "open ephemeral db")
	require.NoError(t, db.AutoMigrate(&Record{}), "migrate records")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSQL_PostgresContract(t *testing.T) {
	db := openEphemeralPostgres(t)
	s := NewSQL(db)
	assertStoreContract(t, s)

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "it:posts", []byte(`[]`)))
	require.NoError(t, s.Save(ctx, "it:posts", []byte(`[{"id":"p1"}]`)))
	v, err := s.Version(ctx, "it:posts")
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}
