package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shipping-carrier-service/internal/ports/shippingtx"
)

// Store runs units of work against Postgres.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new Store.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (s *Store) WithTx(ctx context.Context, fn func(tx shippingtx.Repository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// rollback on panic
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo is the shippingtx.Repository bound to one transaction.
type TxRepo struct {
	tx pgx.Tx
}

var _ shippingtx.Repository = (*TxRepo)(nil)
