package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists user sign preferences in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS user_signs (
		user_id TEXT PRIMARY KEY,
		sign TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveSign(ctx context.Context, userID, sign string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_signs (user_id, sign, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET sign = EXCLUDED.sign, updated_at = EXCLUDED.updated_at`,
		userID,
		sign,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save sign: %w", err)
	}
	return nil
}

func (s *PostgresStore) Sign(ctx context.Context, userID string) (string, error) {
	var sign string
	err := s.pool.QueryRow(ctx,
		`SELECT sign FROM user_signs WHERE user_id = $1`,
		userID,
	).Scan(&sign)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query sign: %w", err)
	}
	return sign, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
