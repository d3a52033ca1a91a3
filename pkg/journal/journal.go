// Package journal keeps a local sqlite history of created and deleted service endpoints.
package journal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const currentDatabaseVersion = 1

//go:embed migrations/*.sql
var migrations embed.FS

type Entry struct {
	ID           int64     `db:"id"`
	RecordedAt   time.Time `db:"recorded_at"`
	Action       string    `db:"action"`
	Project      string    `db:"project"`
	ProjectID    string    `db:"project_id"`
	EndpointName string    `db:"endpoint_name"`
	EndpointID   string    `db:"endpoint_id"`
}

type Journal struct {
	db *sqlx.DB
}

func Open(path string) (*Journal, error) {
	database, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &Journal{db: database}, nil
}

func (j *Journal) Close() {
	if j.db != nil {
		j.db.Close()
	}
}

func (j *Journal) Migrate() error {
	sourceDriver, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	dbDriver, err := sqlite3.WithInstance(j.db.DB, &sqlite3.Config{})
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "journal", dbDriver)
	if err != nil {
		return err
	}

	err = migrator.Migrate(currentDatabaseVersion)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Record appends an entry. A zero RecordedAt is set to the current time.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	entry.RecordedAt = entry.RecordedAt.UTC()

	_, err := j.db.NamedExecContext(ctx, `
INSERT INTO toggles (recorded_at, action, project, project_id, endpoint_name, endpoint_id)
VALUES (:recorded_at, :action, :project, :project_id, :endpoint_name, :endpoint_id)`, entry)
	if err != nil {
		return fmt.Errorf("record %s of '%s': %w", entry.Action, entry.EndpointName, err)
	}
	return nil
}

// List returns up to limit entries, newest first. A non-positive limit means no limit.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	entries := make([]Entry, 0)
	err := j.db.SelectContext(ctx, &entries, `
SELECT id, recorded_at, action, project, project_id, endpoint_name, endpoint_id FROM toggles
ORDER BY recorded_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
