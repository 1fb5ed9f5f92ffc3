package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"peerdesk/internal/models"
)

var ErrJournalNotFound = errors.New("journal not found")

// JournalRepository handles journal database operations
type JournalRepository struct {
	db *sql.DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create creates a new journal
func (r *JournalRepository) Create(journal *models.Journal) error {
	query := `
		INSERT INTO journals (id, name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if journal.ID == "" {
		journal.ID = uuid.NewString()
	}
	now := time.Now()
	_, err := r.db.Exec(query, journal.ID, journal.Name, journal.Slug, now, now)
	if err != nil {
		return fmt.Errorf("failed to create journal: %w", err)
	}

	journal.CreatedAt = now
	journal.UpdatedAt = now
	return nil
}

// GetByID retrieves a journal by ID
func (r *JournalRepository) GetByID(id string) (*models.Journal, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM journals
		WHERE id = $1
	`

	journal := &models.Journal{}
	err := r.db.QueryRow(query, id).Scan(
		&journal.ID,
		&journal.Name,
		&journal.Slug,
		&journal.CreatedAt,
		&journal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get journal by ID: %w", err)
	}

	return journal, nil
}

// GetBySlug retrieves a journal by its URL slug
func (r *JournalRepository) GetBySlug(slug string) (*models.Journal, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at
		FROM journals
		WHERE slug = $1
	`

	journal := &models.Journal{}
	err := r.db.QueryRow(query, slug).Scan(
		&journal.ID,
		&journal.Name,
		&journal.Slug,
		&journal.CreatedAt,
		&journal.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get journal by slug: %w", err)
	}

	return journal, nil
}

// GetWorkflowConfig retrieves a journal's disclosure policy. A journal
// without a stored policy runs in simple mode, reported as (nil, nil).
func (r *JournalRepository) GetWorkflowConfig(journalID string) (*models.WorkflowConfig, error) {
	query := `
		SELECT author_sees_reviews, author_sees_reviewer_identity, reviewers_see_each_other,
		       reviewers_see_author_responses, reviewers_see_author_identity
		FROM journal_workflow_configs
		WHERE journal_id = $1
	`

	config := &models.WorkflowConfig{}
	err := r.db.QueryRow(query, journalID).Scan(
		&config.AuthorSeesReviews,
		&config.AuthorSeesReviewerIdentity,
		&config.ReviewersSeeEachOther,
		&config.ReviewersSeeAuthorResponses,
		&config.ReviewersSeeAuthorIdentity,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workflow config: %w", err)
	}

	return config, nil
}

// UpsertWorkflowConfig stores or replaces a journal's disclosure policy
func (r *JournalRepository) UpsertWorkflowConfig(journalID string, config *models.WorkflowConfig) error {
	query := `
		INSERT INTO journal_workflow_configs (journal_id, author_sees_reviews, author_sees_reviewer_identity,
		       reviewers_see_each_other, reviewers_see_author_responses, reviewers_see_author_identity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (journal_id) DO UPDATE SET
			author_sees_reviews = EXCLUDED.author_sees_reviews,
			author_sees_reviewer_identity = EXCLUDED.author_sees_reviewer_identity,
			reviewers_see_each_other = EXCLUDED.reviewers_see_each_other,
			reviewers_see_author_responses = EXCLUDED.reviewers_see_author_responses,
			reviewers_see_author_identity = EXCLUDED.reviewers_see_author_identity,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(
		query,
		journalID,
		config.AuthorSeesReviews,
		config.AuthorSeesReviewerIdentity,
		config.ReviewersSeeEachOther,
		config.ReviewersSeeAuthorResponses,
		config.ReviewersSeeAuthorIdentity,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert workflow config: %w", err)
	}

	return nil
}

// DeleteWorkflowConfig removes a journal's policy, reverting it to simple mode
func (r *JournalRepository) DeleteWorkflowConfig(journalID string) error {
	query := `DELETE FROM journal_workflow_configs WHERE journal_id = $1`

	if _, err := r.db.Exec(query, journalID); err != nil {
		return fmt.Errorf("failed to delete workflow config: %w", err)
	}

	return nil
}
