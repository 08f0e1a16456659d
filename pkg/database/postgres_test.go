package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/clv/pkg/config"
)

func TestNew(t *testing.T) {
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        2,
			MaxConnLifetime: time.Minute,
			MaxConnIdleTime: time.Minute,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Ping(ctx))
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "://not a url", MaxConns: 1},
	}

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
