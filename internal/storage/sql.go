package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/rogersnm/linkbook/internal/model"
)

const pingTimeout = 5 * time.Second

// SQL keeps the collection in a single row of a key/payload table.
type SQL struct {
	db       *sql.DB
	log      *zap.Logger
	numbered bool // $1-style placeholders
}

var _ Backend = (*SQL)(nil)

// NewSQL wraps an open database and creates the table if needed. Set
// numbered for drivers that expect $N placeholders.
func NewSQL(ctx context.Context, db *sql.DB, numbered bool, log *zap.Logger) (*SQL, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SQL{db: db, log: log, numbered: numbered}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS linkbook_kv (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return s, nil
}

func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQL, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)
	s, err := NewSQL(ctx, db, false, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*SQL, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := NewSQL(ctx, db, true, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) Load(ctx context.Context) ([]model.ManagedObject, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM linkbook_kv WHERE key = ?`), Key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.ManagedObject{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select payload: %w", err)
	}
	return decode([]byte(payload), s.log), nil
}

func (s *SQL) Save(ctx context.Context, objects []model.ManagedObject) error {
	data, err := encode(objects)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO linkbook_kv (key, payload) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload`), Key, string(data))
	if err != nil {
		return fmt.Errorf("upsert payload: %w", err)
	}
	s.log.Debug("saved objects", zap.Int("count", len(objects)))
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $1, $2, ... when the driver needs them.
func (s *SQL) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
