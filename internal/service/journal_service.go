package service

import (
	"errors"
	"fmt"
	"log/slog"

	"peerdesk/internal/models"
	"peerdesk/internal/repository"
)

var (
	ErrJournalNotFound   = errors.New("journal not found")
	ErrInvalidPolicyKnob = errors.New("invalid disclosure mode for policy knob")
)

// JournalService manages journals and their disclosure policies
type JournalService struct {
	journalRepo *repository.JournalRepository
}

// NewJournalService creates a new journal service
func NewJournalService(journalRepo *repository.JournalRepository) *JournalService {
	return &JournalService{journalRepo: journalRepo}
}

// Create creates a new journal. Journals start without a disclosure policy,
// i.e. in simple mode.
func (s *JournalService) Create(name, slug string) (*models.Journal, error) {
	journal := &models.Journal{Name: name, Slug: slug}
	if err := s.journalRepo.Create(journal); err != nil {
		return nil, err
	}

	slog.Info("journal created", "journal_id", journal.ID, "slug", slug)

	return journal, nil
}

// GetBySlug retrieves a journal by slug
func (s *JournalService) GetBySlug(slug string) (*models.Journal, error) {
	journal, err := s.journalRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, ErrJournalNotFound
	}
	return journal, nil
}

// GetWorkflowConfig returns a journal's stored policy, or nil for simple mode
func (s *JournalService) GetWorkflowConfig(journalID string) (*models.WorkflowConfig, error) {
	return s.journalRepo.GetWorkflowConfig(journalID)
}

// SetWorkflowConfig validates and stores a journal's disclosure policy
func (s *JournalService) SetWorkflowConfig(journalID string, config *models.WorkflowConfig) error {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return err
	}
	if journal == nil {
		return ErrJournalNotFound
	}

	if err := validateWorkflowConfig(config); err != nil {
		return err
	}

	if err := s.journalRepo.UpsertWorkflowConfig(journalID, config); err != nil {
		return err
	}

	slog.Info("workflow policy updated", "journal_id", journalID)

	return nil
}

// ClearWorkflowConfig reverts a journal to simple mode
func (s *JournalService) ClearWorkflowConfig(journalID string) error {
	if err := s.journalRepo.DeleteWorkflowConfig(journalID); err != nil {
		return err
	}

	slog.Info("workflow policy cleared", "journal_id", journalID)

	return nil
}

// validateWorkflowConfig checks each knob against its legal modes
func validateWorkflowConfig(config *models.WorkflowConfig) error {
	knobs := []struct {
		name    string
		value   models.DisclosureMode
		allowed []models.DisclosureMode
	}{
		{"author_sees_reviews", config.AuthorSeesReviews,
			[]models.DisclosureMode{models.DisclosureRealtime, models.DisclosureOnRelease, models.DisclosureNever}},
		{"author_sees_reviewer_identity", config.AuthorSeesReviewerIdentity,
			[]models.DisclosureMode{models.DisclosureAlways, models.DisclosureOnRelease, models.DisclosureNever}},
		{"reviewers_see_each_other", config.ReviewersSeeEachOther,
			[]models.DisclosureMode{models.DisclosureRealtime, models.DisclosureAfterAllSubmit, models.DisclosureNever}},
		{"reviewers_see_author_responses", config.ReviewersSeeAuthorResponses,
			[]models.DisclosureMode{models.DisclosureRealtime, models.DisclosureOnRelease}},
		{"reviewers_see_author_identity", config.ReviewersSeeAuthorIdentity,
			[]models.DisclosureMode{models.DisclosureAlways, models.DisclosureNever}},
	}

	for _, knob := range knobs {
		valid := false
		for _, mode := range knob.allowed {
			if knob.value == mode {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%w: %s=%q", ErrInvalidPolicyKnob, knob.name, knob.value)
		}
	}

	return nil
}
