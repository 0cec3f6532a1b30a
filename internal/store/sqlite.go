package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/quakeboard/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS views (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	spec       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS quake_records (
	seq            INTEGER PRIMARY KEY,
	city           TEXT NOT NULL,
	name_plate     TEXT NOT NULL,
	year           INTEGER NOT NULL,
	month          INTEGER NOT NULL,
	date           DATETIME,
	longitude      REAL NOT NULL,
	latitude       REAL NOT NULL,
	location       BLOB,
	count_quakes   REAL,
	magnitude_mean REAL,
	is_prediction  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_views_created_at ON views(created_at);
CREATE INDEX IF NOT EXISTS idx_quake_records_city ON quake_records(city);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateView(ctx context.Context, name string, spec model.FilterSpec) (*model.View, error) {
	if err := validateViewName(name); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal spec")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO views (id, name, spec, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, string(specJSON), now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, eris.Wrapf(ErrDuplicateName, "sqlite: view %q", name)
		}
		return nil, eris.Wrap(err, "sqlite: insert view")
	}

	return &model.View{
		ID:        id,
		Name:      name,
		Spec:      spec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetView(ctx context.Context, id string) (*model.View, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, spec, created_at, updated_at FROM views WHERE id = ?`, id,
	)
	v, err := scanView(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get view %s", id)
	}
	return v, nil
}

func (s *SQLiteStore) ListViews(ctx context.Context) ([]model.View, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, spec, created_at, updated_at FROM views ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list views")
	}
	defer rows.Close() //nolint:errcheck

	views := []model.View{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, eris.Wrap(rows.Err(), "sqlite: iterate views")
}

func (s *SQLiteStore) DeleteView(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete view %s", id)
	}
	return checkRowsAffected(res, "view", id)
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, ds *model.Dataset) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin snapshot")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM quake_records`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear snapshot")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quake_records (`+strings.Join(snapshotColumns, ", ")+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare snapshot")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for i := range ds.Len() {
		args, err := snapshotRow(i, ds.At(i))
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert snapshot row %d", i)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit snapshot")
	}
	return n, nil
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanView(row scannable) (*model.View, error) {
	var v model.View
	var specJSON string

	err := row.Scan(&v.ID, &v.Name, &specJSON, &v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(ErrNotFound, "view")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan view")
	}

	if err := json.Unmarshal([]byte(specJSON), &v.Spec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal spec")
	}
	return &v, nil
}
