package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	_ Store      = (*Postgres)(nil)
	_ UserScoper = (*Postgres)(nil)
)

// Querier is the subset of pgxpool.Pool the Postgres store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres stores values in the settings_kv table, one row per
// (user_id, key). The store returned by NewPostgres owns the rows of
// uuid.Nil; ForUser hands out the store of one user.
type Postgres struct {
	db    Querier
	owner uuid.UUID
}

func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

// ForUser returns a store over the same table scoped to userID.
func (s *Postgres) ForUser(userID uuid.UUID) Store {
	return &Postgres{db: s.db, owner: userID}
}

const (
	selectValueSQL = `SELECT value FROM settings_kv WHERE user_id = $1 AND key = $2`
	upsertValueSQL = `INSERT INTO settings_kv (user_id, key, value, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteValueSQL = `DELETE FROM settings_kv WHERE user_id = $1 AND key = $2`
)

func (s *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx, selectValueSQL, s.owner, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("selecting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Postgres) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx, upsertValueSQL, s.owner, key, value); err != nil {
		return fmt.Errorf("upserting %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, deleteValueSQL, s.owner, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
