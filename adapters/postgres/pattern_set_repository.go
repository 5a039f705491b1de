package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gosynth/domain/core"
	"gosynth/domain/dataset"
	"gosynth/ports"
)

var _ ports.PatternSetRepository = (*PatternSetRepository)(nil)

// PatternSetRepository implements pattern set storage for PostgreSQL.
// Patterns live in a JSONB column; the table row carries the queryable
// envelope.
type PatternSetRepository struct {
	db *sqlx.DB
}

// NewPatternSetRepository creates a new pattern set repository
func NewPatternSetRepository(db *sqlx.DB) *PatternSetRepository {
	return &PatternSetRepository{db: db}
}

// InitSchema creates the backing table when it does not exist yet.
func (r *PatternSetRepository) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pattern_sets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			patterns JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create pattern_sets table: %w", err)
	}
	return nil
}

// Save stores a pattern set, replacing any existing record with the same ID
func (r *PatternSetRepository) Save(ctx context.Context, ps *dataset.PatternSet) error {
	if ps == nil {
		return core.NewValidationError("pattern_set", "pattern set is nil")
	}
	if err := ps.Validate(); err != nil {
		return err
	}
	patternsJSON, err := json.Marshal(ps.Patterns)
	if err != nil {
		return fmt.Errorf("failed to marshal patterns: %w", err)
	}

	query := `INSERT INTO pattern_sets (id, name, fingerprint, patterns, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			fingerprint = EXCLUDED.fingerprint,
			patterns = EXCLUDED.patterns,
			created_at = EXCLUDED.created_at`

	_, err = r.db.ExecContext(ctx, query,
		ps.ID.String(), ps.Name, ps.Fingerprint.String(), patternsJSON, ps.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save pattern set: %w", err)
	}
	return nil
}

// GetByID loads one stored pattern set
func (r *PatternSetRepository) GetByID(ctx context.Context, id core.PatternSetID) (*dataset.PatternSet, error) {
	query := `SELECT id, name, fingerprint, patterns, created_at
		FROM pattern_sets WHERE id = $1`

	var (
		ps           dataset.PatternSet
		patternsJSON []byte
		createdAt    time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&ps.ID, &ps.Name, &ps.Fingerprint, &patternsJSON, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrPatternSetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get pattern set: %w", err)
	}

	if err := json.Unmarshal(patternsJSON, &ps.Patterns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patterns: %w", err)
	}
	ps.CreatedAt = core.NewTimestamp(createdAt)
	return &ps, nil
}

// List returns stored pattern sets newest first
func (r *PatternSetRepository) List(ctx context.Context, limit, offset int) ([]ports.PatternSetSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, name, fingerprint, jsonb_array_length(patterns), created_at
		FROM pattern_sets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pattern sets: %w", err)
	}
	defer rows.Close()

	var summaries []ports.PatternSetSummary
	for rows.Next() {
		var (
			s         ports.PatternSetSummary
			createdAt time.Time
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Fingerprint, &s.Columns, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pattern set row: %w", err)
		}
		s.CreatedAt = core.NewTimestamp(createdAt)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete removes a stored pattern set
func (r *PatternSetRepository) Delete(ctx context.Context, id core.PatternSetID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pattern_sets WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete pattern set: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrPatternSetNotFound, id)
	}
	return nil
}
