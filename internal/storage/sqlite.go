package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteGateway stores documents in a single key/value table. It is the
// durable stand-in for the browser-local storage the documents came from.
type SQLiteGateway struct {
	db        *sql.DB
	namespace string
}

// NewSQLiteGateway opens (creating if needed) the database at dbPath and
// runs migrations. Keys are namespaced with DefaultNamespace.
func NewSQLiteGateway(dbPath string) (*SQLiteGateway, error) {
	return NewSQLiteGatewayNS(dbPath, DefaultNamespace)
}

// NewSQLiteGatewayNS opens a gateway with an explicit namespace.
func NewSQLiteGatewayNS(dbPath, namespace string) (*SQLiteGateway, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteGateway{db: db, namespace: namespace}, nil
}

func (g *SQLiteGateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

func (g *SQLiteGateway) key(name string) string {
	return NamespacedKey(g.namespace, name)
}

func (g *SQLiteGateway) Namespace() string {
	return g.namespace
}

// Put serializes doc and rewrites the stored value in one statement. The
// quota check happens before any write, so an oversized document never
// clobbers the previous one.
func (g *SQLiteGateway) Put(ctx context.Context, name string, doc any) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	_, err = g.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		g.key(name), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put document %s: %w", name, err)
	}
	return nil
}

func (g *SQLiteGateway) Get(ctx context.Context, name string, out any) (bool, error) {
	var value string
	err := g.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE key = ?`, g.key(name)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get document %s: %w", name, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		// A corrupt document degrades to the caller's empty default
		// instead of propagating a parse error.
		slog.WarnContext(ctx, "Stored document does not parse, falling back to default",
			"key", name, "error", err)
		return false, nil
	}
	return true, nil
}

func (g *SQLiteGateway) Delete(ctx context.Context, name string) error {
	if _, err := g.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key = ?`, g.key(name)); err != nil {
		return fmt.Errorf("delete document %s: %w", name, err)
	}
	return nil
}

func (g *SQLiteGateway) Keys(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT key FROM documents WHERE key LIKE ? ORDER BY key`, g.namespace+"_%")
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (g *SQLiteGateway) GetRaw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := g.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get raw document %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

var _ Gateway = (*SQLiteGateway)(nil)
