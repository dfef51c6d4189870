// Package store persists issued decrees and marks candidates as generated.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/models"
)

// PostgresStore keeps decree records in the decrees table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Create inserts d and returns it with the assigned id and timestamps. A
// caller-supplied id is kept.
func (s *PostgresStore) Create(ctx context.Context, d models.Decree) (models.Decree, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DecreeStatusActive
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}

	query := `
		INSERT INTO decrees (id, candidate_id, category, owner_name, number, unit, issued_at, status, batch_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		d.ID, d.CandidateID, string(d.Category), d.OwnerName, d.Number, d.Unit,
		d.IssuedAt, d.Status, d.BatchID, d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		return models.Decree{}, fmt.Errorf("insert decree: %w", err)
	}
	return d, nil
}

// Get returns the decree with id or a DECREE_NOT_FOUND error.
func (s *PostgresStore) Get(ctx context.Context, id string) (models.Decree, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Decree{}, apperrors.NewDecreeNotFoundError(id)
	}

	query := `
		SELECT id, candidate_id, category, owner_name, number, unit, issued_at, status, batch_id, created_at
		FROM decrees
		WHERE id = $1
	`
	var (
		d   models.Decree
		cat string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.CandidateID, &cat, &d.OwnerName, &d.Number, &d.Unit,
		&d.IssuedAt, &d.Status, &d.BatchID, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Decree{}, apperrors.NewDecreeNotFoundError(id)
	}
	if err != nil {
		return models.Decree{}, fmt.Errorf("select decree %s: %w", id, err)
	}
	d.Category = models.Category(cat)
	return d, nil
}

// ListByCandidate returns a candidate's decrees, newest first.
func (s *PostgresStore) ListByCandidate(ctx context.Context, candidateID string) ([]models.Decree, error) {
	query := `
		SELECT id, candidate_id, category, owner_name, number, unit, issued_at, status, batch_id, created_at
		FROM decrees
		WHERE candidate_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list decrees: %w", err)
	}
	defer rows.Close()

	var out []models.Decree
	for rows.Next() {
		var (
			d   models.Decree
			cat string
		)
		if err := rows.Scan(&d.ID, &d.CandidateID, &cat, &d.OwnerName, &d.Number, &d.Unit,
			&d.IssuedAt, &d.Status, &d.BatchID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decree: %w", err)
		}
		d.Category = models.Category(cat)
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkGenerated stamps the candidate row. A missing row is not an error.
func (s *PostgresStore) MarkGenerated(ctx context.Context, candidateID string) error {
	if candidateID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET sk_generated_at = $1 WHERE id = $2`,
		s.now().UTC(), candidateID,
	)
	if err != nil {
		return fmt.Errorf("mark candidate %s generated: %w", candidateID, err)
	}
	return nil
}
