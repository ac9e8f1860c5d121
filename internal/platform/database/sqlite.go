package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"askly/internal/platform/config"
)

// Open connects to the sqlite database described by cfg. Every transaction is
// started with BEGIN IMMEDIATE so read-then-write sequences inside a tx are
// serialized against other writers.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, path := buildDSN(cfg)

	if path != "" && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = cfg.ConnectTimeout

	err = backoff.RetryNotify(db.Ping, bo, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("database ping failed, retrying")
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func buildDSN(cfg config.DatabaseConfig) (dsn string, path string) {
	raw := strings.TrimPrefix(cfg.URL, "file:")
	path = raw
	var query string
	if i := strings.Index(raw, "?"); i >= 0 {
		path, query = raw[:i], raw[i+1:]
	}

	params := []string{"_foreign_keys=on", "_txlock=immediate"}
	if path != ":memory:" {
		params = append(params, "_journal_mode=WAL")
	}
	if cfg.BusyTimeout > 0 {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", cfg.BusyTimeout.Milliseconds()))
	}
	if query != "" {
		params = append(params, query)
	}

	return "file:" + path + "?" + strings.Join(params, "&"), path
}
