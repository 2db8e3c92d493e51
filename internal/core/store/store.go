// Package store persists form definitions and submissions.
//
// Forms are stored normalised across forms, steps, fields and
// field_options; JSON documents (settings, rules, UI options, conditions,
// submission data) are stored as text and decoded on load. A malformed
// stored document fails the load instead of being silently dropped.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/solatis/formkeeper/internal/core/db"
)

// Store is the sqlx-backed repository for forms and submissions.
type Store struct {
	conn    *sqlx.DB
	queries *db.Queries
}

// New wraps an open, migrated database.
func New(conn *sqlx.DB) (*Store, error) {
	q, err := db.LoadQueries()
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn, queries: q}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to sentinel, passing other errors through.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// affected returns sentinel when a statement touched no rows.
func affected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
