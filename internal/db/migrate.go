package db

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/usersvc/apiserver/config"
)

// DefaultMigrationsDir is relative to the repository root.
const DefaultMigrationsDir = "internal/db/migrations"

// MigrationURLs returns the golang-migrate source and database URLs for cfg.
// Each driver family keeps its scripts in its own subdirectory of dir.
func MigrationURLs(cfg config.DatabaseConfig, dir string) (source, database string, err error) {
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "postgres":
		source, database = filepath.Join(dir, "postgres"), PostgresURL(cfg)
	case "pgx":
		source = filepath.Join(dir, "postgres")
		database = "pgx5" + strings.TrimPrefix(PostgresURL(cfg), "postgres")
	case "sqlite3":
		if strings.TrimSpace(cfg.Path) == "" {
			return "", "", errors.New("sqlite3 requires DB_PATH")
		}
		source, database = filepath.Join(dir, "sqlite"), "sqlite3://"+cfg.Path
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return "file://" + filepath.ToSlash(source), database, nil
}

// Migrate applies (up) or reverts (down) every migration in dir.
func Migrate(cfg config.DatabaseConfig, dir string, up bool) error {
	source, database, err := MigrationURLs(cfg, dir)
	if err != nil {
		return err
	}

	migrator, err := migrate.New(source, database)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if up {
		err = migrator.Up()
	} else {
		err = migrator.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		direction := "up"
		if !up {
			direction = "down"
		}
		return fmt.Errorf("migrate %s failed: %w", direction, err)
	}
	return nil
}
