// Package testutil builds throwaway SQLite-backed connectors and stores
// for package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage/connector"
	"github.com/aanand-mishra/students-api/internal/storage/gormstore"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SQLiteConfig returns a config.Database for a private in-memory database.
// Each call yields a distinct database.
func SQLiteConfig() config.Database {
	return config.Database{
		Dialect: config.DialectSQLite,
		Name:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
}

// NewConnector opens a fresh in-memory database with the schema in place.
// It is closed when the test ends.
func NewConnector(t testing.TB) *connector.Connector {
	t.Helper()

	ctx := context.Background()
	c, err := connector.Open(ctx, SQLiteConfig(), connector.WithLogger(DiscardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Sync(ctx, true))
	return c
}

// NewStore returns a gormstore.Store on top of NewConnector.
func NewStore(t testing.TB, opts ...gormstore.Option) *gormstore.Store {
	t.Helper()
	return gormstore.New(NewConnector(t), opts...)
}
