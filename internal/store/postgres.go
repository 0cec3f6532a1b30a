package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/quakeboard/internal/db"
	"github.com/sells-group/quakeboard/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS views (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	spec       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quake_records (
	seq            INTEGER PRIMARY KEY,
	city           TEXT NOT NULL,
	name_plate     TEXT NOT NULL,
	year           INTEGER NOT NULL,
	month          INTEGER NOT NULL,
	date           DATE,
	longitude      DOUBLE PRECISION NOT NULL,
	latitude       DOUBLE PRECISION NOT NULL,
	location       BYTEA,
	count_quakes   DOUBLE PRECISION,
	magnitude_mean DOUBLE PRECISION,
	is_prediction  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_views_created_at ON views(created_at);
CREATE INDEX IF NOT EXISTS idx_quake_records_city ON quake_records(city);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateView(ctx context.Context, name string, spec model.FilterSpec) (*model.View, error) {
	if err := validateViewName(name); err != nil {
		return nil, err
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal spec")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO views (id, name, spec, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, specJSON, now, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, eris.Wrapf(ErrDuplicateName, "postgres: view %q", name)
		}
		return nil, eris.Wrap(err, "postgres: insert view")
	}

	return &model.View{
		ID:        id,
		Name:      name,
		Spec:      spec,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetView(ctx context.Context, id string) (*model.View, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get view %s", id)
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, name, spec, created_at, updated_at FROM views WHERE id = $1`, id,
	)
	v, err := scanPgView(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get view %s", id)
	}
	return v, nil
}

func (s *PostgresStore) ListViews(ctx context.Context) ([]model.View, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, spec, created_at, updated_at FROM views ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list views")
	}
	defer rows.Close()

	views := []model.View{}
	for rows.Next() {
		v, err := scanPgView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, eris.Wrap(rows.Err(), "postgres: iterate views")
}

func (s *PostgresStore) DeleteView(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return eris.Wrapf(ErrNotFound, "view %s", id)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM views WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete view %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "view %s", id)
	}
	return nil
}

// SaveSnapshot truncates quake_records and bulk-loads ds with COPY inside
// one transaction.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, ds *model.Dataset) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin snapshot")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE quake_records`); err != nil {
		return 0, eris.Wrap(err, "postgres: truncate snapshot")
	}

	rows := make([][]any, 0, ds.Len())
	for i := range ds.Len() {
		row, err := snapshotRow(i, ds.At(i))
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	n, err := db.CopyFrom(ctx, tx, "quake_records", snapshotColumns, rows)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit snapshot")
	}
	return n, nil
}

func scanPgView(row pgx.Row) (*model.View, error) {
	var v model.View
	var specJSON []byte

	err := row.Scan(&v.ID, &v.Name, &specJSON, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "view")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan view")
	}
	if err := json.Unmarshal(specJSON, &v.Spec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal spec")
	}
	return &v, nil
}
