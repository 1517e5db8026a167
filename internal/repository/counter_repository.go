package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CounterRepository backs the human-readable ID allocator with a per-role
// sequence row.
type CounterRepository struct {
	db *sqlx.DB
}

// NewCounterRepository creates a new instance of CounterRepository.
func NewCounterRepository(db *sqlx.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next atomically increments the sequence for the role and returns the new
// value. The upsert seeds a missing row at start+1, so the first allocation
// after a configured floor of 1000 yields 1001. A single statement keeps the
// increment-and-read atomic under concurrent callers.
func (r *CounterRepository) Next(ctx context.Context, role string, start int64) (int64, error) {
	const query = `INSERT INTO counters (role, seq) VALUES ($1, $2 + 1)
		ON CONFLICT (role) DO UPDATE SET seq = counters.seq + 1
		RETURNING seq`
	var seq int64
	if err := r.db.GetContext(ctx, &seq, query, role, start); err != nil {
		return 0, fmt.Errorf("next counter for %s: %w", role, err)
	}
	return seq, nil
}
