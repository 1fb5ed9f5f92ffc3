package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"peerdesk/internal/models"
)

var ErrManuscriptNotFound = errors.New("manuscript not found")

// ManuscriptRepository handles manuscript database operations
type ManuscriptRepository struct {
	db *sql.DB
}

// NewManuscriptRepository creates a new manuscript repository
func NewManuscriptRepository(db *sql.DB) *ManuscriptRepository {
	return &ManuscriptRepository{db: db}
}

// Create creates a new manuscript and records the submitter as first author
func (r *ManuscriptRepository) Create(manuscript *models.Manuscript) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if manuscript.ID == "" {
		manuscript.ID = uuid.NewString()
	}
	if manuscript.WorkflowPhase == "" {
		manuscript.WorkflowPhase = models.PhaseSubmitted
	}
	if manuscript.WorkflowRound == 0 {
		manuscript.WorkflowRound = 1
	}

	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO manuscripts (id, journal_id, title, workflow_phase, workflow_round, submitted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		manuscript.ID,
		manuscript.JournalID,
		manuscript.Title,
		manuscript.WorkflowPhase,
		manuscript.WorkflowRound,
		manuscript.SubmittedBy,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create manuscript: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO manuscript_authors (manuscript_id, user_id, position, created_at)
		VALUES ($1, $2, 1, $3)
	`, manuscript.ID, manuscript.SubmittedBy, now)
	if err != nil {
		return fmt.Errorf("failed to record submitting author: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	manuscript.CreatedAt = now
	manuscript.UpdatedAt = now
	return nil
}

// GetByID retrieves a manuscript by ID
func (r *ManuscriptRepository) GetByID(id string) (*models.Manuscript, error) {
	query := `
		SELECT id, journal_id, title, workflow_phase, workflow_round, submitted_by, created_at, updated_at
		FROM manuscripts
		WHERE id = $1
	`

	manuscript := &models.Manuscript{}
	err := r.db.QueryRow(query, id).Scan(
		&manuscript.ID,
		&manuscript.JournalID,
		&manuscript.Title,
		&manuscript.WorkflowPhase,
		&manuscript.WorkflowRound,
		&manuscript.SubmittedBy,
		&manuscript.CreatedAt,
		&manuscript.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manuscript by ID: %w", err)
	}

	return manuscript, nil
}

// ListAuthorIDs returns the user IDs listed as authors of a manuscript,
// ordered by author position
func (r *ManuscriptRepository) ListAuthorIDs(manuscriptID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM manuscript_authors
		WHERE manuscript_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuscript authors: %w", err)
	}
	defer rows.Close()

	var authorIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan author ID: %w", err)
		}
		authorIDs = append(authorIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate manuscript authors: %w", err)
	}

	return authorIDs, nil
}

// AddAuthor appends a user to a manuscript's author list
func (r *ManuscriptRepository) AddAuthor(manuscriptID, userID string) error {
	query := `
		INSERT INTO manuscript_authors (manuscript_id, user_id, position, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position), 0) + 1 FROM manuscript_authors WHERE manuscript_id = $1), $3)
		ON CONFLICT (manuscript_id, user_id) DO NOTHING
	`

	if _, err := r.db.Exec(query, manuscriptID, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to add manuscript author: %w", err)
	}

	return nil
}

// UpdatePhase advances a manuscript to a new workflow phase. Moving back to
// UNDER_REVIEW after an author response starts the next round.
func (r *ManuscriptRepository) UpdatePhase(id string, phase models.WorkflowPhase, round int) error {
	query := `
		UPDATE manuscripts
		SET workflow_phase = $1, workflow_round = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(query, phase, round, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update manuscript phase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrManuscriptNotFound
	}

	return nil
}

// ListByJournal retrieves manuscripts belonging to a journal, newest first
func (r *ManuscriptRepository) ListByJournal(journalID string) ([]models.Manuscript, error) {
	query := `
		SELECT id, journal_id, title, workflow_phase, workflow_round, submitted_by, created_at, updated_at
		FROM manuscripts
		WHERE journal_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuscripts: %w", err)
	}
	defer rows.Close()

	var manuscripts []models.Manuscript
	for rows.Next() {
		var m models.Manuscript
		err := rows.Scan(
			&m.ID,
			&m.JournalID,
			&m.Title,
			&m.WorkflowPhase,
			&m.WorkflowRound,
			&m.SubmittedBy,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manuscript: %w", err)
		}
		manuscripts = append(manuscripts, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate manuscripts: %w", err)
	}

	return manuscripts, nil
}
