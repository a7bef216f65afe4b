package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var ledgerSchema embed.FS

// ErrDirtySchema means a previous migration stopped halfway and needs manual repair.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// migrateLedger brings the ledger schema at dbPath up to date and returns the
// resulting schema version. The migrator gets its own handle because closing
// it also closes the underlying database.
func migrateLedger(dbPath string) (uint, error) {
	handle, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open ledger for migration: %w", err)
	}
	defer handle.Close()

	src, err := iofs.New(ledgerSchema, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load embedded schema: %w", err)
	}
	target, err := sqlite.WithInstance(handle, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("wrap ledger handle: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if _, dirty, verr := m.Version(); verr == nil && dirty {
		return 0, ErrDirtySchema
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return 0, fmt.Errorf("apply schema: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	slog.Debug("ledger schema ready", "path", dbPath, "version", version)
	return version, nil
}
