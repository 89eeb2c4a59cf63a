package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenReadOnly opens the pool the query service runs on. Sessions
// default every transaction to read-only, a second guard behind the
// read-only role's grants.
func OpenReadOnly(ctx context.Context, dsn string) (*sql.DB, error) {
	return Open(ctx, readOnlyDSN(dsn))
}

func readOnlyDSN(dsn string) string {
	const opt = "-c default_transaction_read_only=on"
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "options=" + url.QueryEscape(opt)
	}
	return dsn + " options='" + opt + "'"
}

// RunMigrations applies sql/schema.sql. The query service never calls
// this; schema ownership sits with the importer's init step.
func RunMigrations(ctx context.Context, db *sql.DB, basePath string) error {
	path := filepath.Join(basePath, "schema.sql")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
