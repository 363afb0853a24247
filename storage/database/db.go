package database

import (
	"embed"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/esirbde/skisatiresa/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to the sqlite database file with foreign key constraints
// enforced; the whole application shares this one connection pool.
func Open(conf *core.Config) (*sqlx.DB, error) {
	q := make(url.Values)
	q.Set("_foreign_keys", "on")

	dsn := "file:" + conf.Database.Path + "?" + q.Encode()
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// sqlite allows a single writer; one open transaction at a time.
	db.SetMaxOpenConns(1)
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func newMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "loading migrations")
	}
	drv, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "preparing migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	return m, errors.Wrap(err, "preparing migrations")
}

// Migrate brings the schema up to date from the embedded migration files.
func Migrate(db *sqlx.DB) error {
	if err := ping(db); err != nil {
		return err
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// MigrateDown rolls back every migration; used by the admin CLI and tests.
func MigrateDown(db *sqlx.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "rolling back database")
	}
	return nil
}

// Version reports the current schema version and whether it is dirty.
// A fresh database reports version 0.
func Version(db *sqlx.DB) (uint, bool, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return v, dirty, errors.Wrap(err, "reading schema version")
}
