package service

import (
	"errors"
	"fmt"
	"log/slog"

	"peerdesk/internal/models"
	"peerdesk/internal/repository"
)

var ErrInvalidPhaseTransition = errors.New("invalid workflow phase transition")

// validTransitions lists the allowed workflow phase edges
var validTransitions = map[models.WorkflowPhase][]models.WorkflowPhase{
	models.PhaseSubmitted:        {models.PhaseUnderReview},
	models.PhaseUnderReview:      {models.PhaseDeliberation, models.PhaseReleased},
	models.PhaseDeliberation:     {models.PhaseReleased},
	models.PhaseReleased:         {models.PhaseAuthorResponding, models.PhasePublished},
	models.PhaseAuthorResponding: {models.PhaseUnderReview, models.PhasePublished},
	models.PhasePublished:        {},
}

// ManuscriptService manages manuscripts and their workflow lifecycle
type ManuscriptService struct {
	manuscriptRepo *repository.ManuscriptRepository
	journalRepo    *repository.JournalRepository
}

// NewManuscriptService creates a new manuscript service
func NewManuscriptService(
	manuscriptRepo *repository.ManuscriptRepository,
	journalRepo *repository.JournalRepository,
) *ManuscriptService {
	return &ManuscriptService{
		manuscriptRepo: manuscriptRepo,
		journalRepo:    journalRepo,
	}
}

// Submit creates a new manuscript in the SUBMITTED phase
func (s *ManuscriptService) Submit(journalID, title, submittedBy string) (*models.Manuscript, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, ErrJournalNotFound
	}

	manuscript := &models.Manuscript{
		JournalID:   journalID,
		Title:       title,
		SubmittedBy: submittedBy,
	}
	if err := s.manuscriptRepo.Create(manuscript); err != nil {
		return nil, err
	}

	slog.Info("manuscript submitted",
		"manuscript_id", manuscript.ID,
		"journal_id", journalID,
		"submitted_by", submittedBy,
	)

	return manuscript, nil
}

// GetByID retrieves a manuscript
func (s *ManuscriptService) GetByID(id string) (*models.Manuscript, error) {
	manuscript, err := s.manuscriptRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if manuscript == nil {
		return nil, ErrManuscriptNotFound
	}
	return manuscript, nil
}

// AddAuthor appends a co-author to the manuscript's author list
func (s *ManuscriptService) AddAuthor(manuscriptID, userID string) error {
	manuscript, err := s.manuscriptRepo.GetByID(manuscriptID)
	if err != nil {
		return err
	}
	if manuscript == nil {
		return ErrManuscriptNotFound
	}
	return s.manuscriptRepo.AddAuthor(manuscriptID, userID)
}

// Transition advances the manuscript to a new workflow phase. Re-entering
// UNDER_REVIEW from AUTHOR_RESPONDING starts the next review round.
func (s *ManuscriptService) Transition(manuscriptID string, target models.WorkflowPhase) (*models.Manuscript, error) {
	manuscript, err := s.manuscriptRepo.GetByID(manuscriptID)
	if err != nil {
		return nil, err
	}
	if manuscript == nil {
		return nil, ErrManuscriptNotFound
	}

	allowed := false
	for _, next := range validTransitions[manuscript.WorkflowPhase] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidPhaseTransition, manuscript.WorkflowPhase, target)
	}

	round := manuscript.WorkflowRound
	if manuscript.WorkflowPhase == models.PhaseAuthorResponding && target == models.PhaseUnderReview {
		round++
	}

	if err := s.manuscriptRepo.UpdatePhase(manuscriptID, target, round); err != nil {
		return nil, err
	}

	slog.Info("manuscript phase changed",
		"manuscript_id", manuscriptID,
		"from", manuscript.WorkflowPhase,
		"to", target,
		"round", round,
	)

	manuscript.WorkflowPhase = target
	manuscript.WorkflowRound = round
	return manuscript, nil
}

// ListByJournal returns a journal's manuscripts
func (s *ManuscriptService) ListByJournal(journalID string) ([]models.Manuscript, error) {
	return s.manuscriptRepo.ListByJournal(journalID)
}
