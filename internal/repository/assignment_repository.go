package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"peerdesk/internal/models"
)

var (
	ErrAssignmentNotFound = errors.New("review assignment not found")
	ErrAssignmentExists   = errors.New("reviewer is already assigned to this manuscript")
)

// AssignmentRepository handles review assignment database operations
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create creates a new review assignment
func (r *AssignmentRepository) Create(assignment *models.ReviewAssignment) error {
	query := `
		INSERT INTO review_assignments (id, manuscript_id, reviewer_id, status, assigned_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentPending
	}
	now := time.Now()
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = now
	}

	_, err := r.db.Exec(
		query,
		assignment.ID,
		assignment.ManuscriptID,
		assignment.ReviewerID,
		assignment.Status,
		assignment.AssignedAt,
		now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAssignmentExists
		}
		return fmt.Errorf("failed to create review assignment: %w", err)
	}

	assignment.UpdatedAt = now
	return nil
}

// GetByID retrieves a review assignment by ID
func (r *AssignmentRepository) GetByID(id string) (*models.ReviewAssignment, error) {
	query := `
		SELECT id, manuscript_id, reviewer_id, status, assigned_at, updated_at
		FROM review_assignments
		WHERE id = $1
	`

	assignment := &models.ReviewAssignment{}
	err := r.db.QueryRow(query, id).Scan(
		&assignment.ID,
		&assignment.ManuscriptID,
		&assignment.ReviewerID,
		&assignment.Status,
		&assignment.AssignedAt,
		&assignment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review assignment by ID: %w", err)
	}

	return assignment, nil
}

// ListByManuscript retrieves all assignments for a manuscript ordered by
// assignment time. The ordering is what keeps reviewer ordinals stable, so
// it must not change.
func (r *AssignmentRepository) ListByManuscript(manuscriptID string) ([]models.ReviewAssignment, error) {
	query := `
		SELECT id, manuscript_id, reviewer_id, status, assigned_at, updated_at
		FROM review_assignments
		WHERE manuscript_id = $1
		ORDER BY assigned_at ASC, id ASC
	`

	rows, err := r.db.Query(query, manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.ReviewAssignment
	for rows.Next() {
		var a models.ReviewAssignment
		err := rows.Scan(
			&a.ID,
			&a.ManuscriptID,
			&a.ReviewerID,
			&a.Status,
			&a.AssignedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review assignments: %w", err)
	}

	return assignments, nil
}

// UpdateStatus transitions an assignment to a new status
func (r *AssignmentRepository) UpdateStatus(id string, status models.AssignmentStatus) error {
	query := `
		UPDATE review_assignments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

// Delete removes a review assignment
func (r *AssignmentRepository) Delete(id string) error {
	query := `DELETE FROM review_assignments WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete review assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}
