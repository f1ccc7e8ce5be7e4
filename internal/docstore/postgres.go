package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists task records in a single table keyed by
// (collection, id). A monotonic sequence keeps listing in insertion order.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initRecordSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initRecordSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			status TEXT NOT NULL,
			seq BIGSERIAL,
			PRIMARY KEY (collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_collection_seq ON records (collection, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init record schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, collection string, fields Fields) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (collection, id, title, date, status) VALUES ($1,$2,$3,$4,$5)`,
		collection, id, fields.Title, fields.Date, fields.Status,
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, date, status FROM records WHERE collection=$1 ORDER BY seq ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, 16)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Date, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, collection, id string, patch Patch) error {
	row := s.pool.QueryRow(ctx,
		`SELECT title, date, status FROM records WHERE collection=$1 AND id=$2`,
		collection, id,
	)
	var fields Fields
	if err := row.Scan(&fields.Title, &fields.Date, &fields.Status); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("load record: %w", err)
	}

	if patch.Title != nil {
		fields.Title = *patch.Title
	}
	if patch.Date != nil {
		fields.Date = *patch.Date
	}
	if patch.Status != nil {
		fields.Status = *patch.Status
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE records SET title=$3, date=$4, status=$5 WHERE collection=$1 AND id=$2`,
		collection, id, fields.Title, fields.Date, fields.Status,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM records WHERE collection=$1 AND id=$2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
