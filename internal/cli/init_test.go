package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnomeshade/internal/config"
	"gnomeshade/internal/log"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)

	boom := errors.New("boom")
	_, err = LoadConfig(func(*config.Config) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestOpenStore(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		SQLiteDBPath:   filepath.Join(t.TempDir(), "nested", "cli.db"),
	}
	db, store, err := OpenStore(context.Background(), cfg, log.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	currencies, err := store.Currencies.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, currencies, "migrations seed currencies")
}

func TestGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var deadline bool
	err := GracefulShutdown(ctx, log.Discard(), time.Second, func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deadline)

	failure := errors.New("close failed")
	err = GracefulShutdown(ctx, log.Discard(), time.Second, func(context.Context) error { return failure })
	assert.ErrorIs(t, err, failure)
}
