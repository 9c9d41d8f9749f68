//go:build integration

package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests run against live servers.
// Set LINKBOOK_TEST_POSTGRES_DSN and/or LINKBOOK_TEST_REDIS_ADDR.
//
// Run: go test -tags integration ./internal/storage/ -v

func TestPostgres_Contract(t *testing.T) {
	dsn := os.Getenv("LINKBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LINKBOOK_TEST_POSTGRES_DSN not set, skipping postgres tests")
	}
	s, err := OpenPostgres(ctx, dsn, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.ExecContext(ctx, `DELETE FROM linkbook_kv WHERE key = $1`, Key)
	require.NoError(t, err)
	exerciseBackend(t, s)
}

func TestRedis_Contract(t *testing.T) {
	addr := os.Getenv("LINKBOOK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LINKBOOK_TEST_REDIS_ADDR not set, skipping redis tests")
	}
	r, err := OpenRedis(ctx, addr, "linkbook-test", nil)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.rdb.Del(ctx, r.key).Err())
	exerciseBackend(t, r)
}
