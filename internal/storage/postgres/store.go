package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenLauncher/internal/model"
	"tokenLauncher/internal/storage"
)

// Store provides Postgres persistence for launched tokens.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.TokenStore = (*Store)(nil)

// NewStore connects to dsn and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Insert writes a token record and returns the generated id.
func (s *Store) Insert(ctx context.Context, record *model.TokenRecord) (int64, error) {
	if err := storage.ValidateRecord(record); err != nil {
		return 0, err
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tokens (
			name, symbol, description, token_address, twitter, telegram, website, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		record.Name,
		record.Symbol,
		record.Description,
		record.TokenAddress,
		record.Twitter,
		record.Telegram,
		record.Website,
		record.ImageURL,
	).Scan(&id)
	if err != nil {
		if isCheckViolation(err) {
			return 0, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return 0, fmt.Errorf("insert token: %w", err)
	}
	return id, nil
}

// GetByID returns the record with id. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*model.TokenRecord, error) {
	var r model.TokenRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, symbol, description, token_address, twitter, telegram, website, image_url, created_at
		FROM tokens
		WHERE id = $1
	`, id).Scan(
		&r.ID,
		&r.Name,
		&r.Symbol,
		&r.Description,
		&r.TokenAddress,
		&r.Twitter,
		&r.Telegram,
		&r.Website,
		&r.ImageURL,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by id: %w", err)
	}
	return &r, nil
}

const (
	pgErrNotNullViolation = "23502"
	pgErrCheckViolation   = "23514"
)

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrNotNullViolation || pgErr.Code == pgErrCheckViolation
	}
	return false
}
