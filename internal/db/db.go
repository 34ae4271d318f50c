package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/usersvc/apiserver/config"
	"github.com/usersvc/apiserver/internal/store"
)

const (
	defaultDBDriver     = "postgres"
	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
)

// Open connects to the configured database and returns the pool together with
// the placeholder dialect its driver expects.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, store.Dialect, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if driver == "" {
		driver = defaultDBDriver
	}

	dialect, err := store.DialectFor(driver)
	if err != nil {
		return nil, 0, err
	}

	dsn, err := DSN(driver, cfg.Database)
	if err != nil {
		return nil, 0, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, 0, err
	}

	if driver == "sqlite3" {
		// SQLite serializes writers; a single connection also keeps
		// ":memory:" databases coherent.
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxIdleTime(defaultConnMaxIdle)
		db.SetConnMaxLifetime(defaultConnMaxLife)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetMaxOpenConns(defaultMaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, 0, err
	}

	return db, dialect, nil
}

// DSN builds the data source name for driver.
func DSN(driver string, cfg config.DatabaseConfig) (string, error) {
	switch driver {
	case "postgres", "pgx":
		return PostgresURL(cfg), nil
	case "sqlite3":
		if strings.TrimSpace(cfg.Path) == "" {
			return "", fmt.Errorf("sqlite3 requires DB_PATH")
		}
		return cfg.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// PostgresURL renders a postgres:// connection URL understood by lib/pq, pgx
// and golang-migrate.
func PostgresURL(cfg config.DatabaseConfig) string {
	sslmode := "disable"
	if cfg.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		User:   url.UserPassword(cfg.User, cfg.Password),
		Path:   cfg.DBName,
	}

	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()

	return u.String()
}
