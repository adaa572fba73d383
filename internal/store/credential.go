package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// CredentialRepo persists the bearer token in a single-row table. It
// implements auth.TokenStore.
type CredentialRepo struct {
	db *sql.DB
}

// Token returns the stored token, or "" when none is stored.
func (r *CredentialRepo) Token(ctx context.Context) (string, error) {
	query, args := builder().Select("token").
		From(entsql.Table("credentials")).
		Where(entsql.EQ("id", 1)).
		Query()

	var token string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return token, nil
}

// SetToken replaces the stored token.
func (r *CredentialRepo) SetToken(ctx context.Context, token string) error {
	query, args := builder().Insert("credentials").
		Columns("id", "token", "updated_at").
		Values(1, token, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an empty slot is not an error.
func (r *CredentialRepo) ClearToken(ctx context.Context) error {
	query, args := builder().Delete("credentials").
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
