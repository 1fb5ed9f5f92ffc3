package service

import (
	"errors"
	"fmt"
	"log/slog"

	"peerdesk/internal/models"
	"peerdesk/internal/policy"
	"peerdesk/internal/repository"
)

var (
	ErrAssignmentNotFound = errors.New("review assignment not found")
	ErrAuthorAsReviewer   = errors.New("a manuscript author cannot review their own manuscript")
)

// AssignmentService manages review assignments. Every mutation invalidates
// the reviewer index for the affected manuscript before the next read, so
// ordinals never drift from assigned_at order unobserved.
type AssignmentService struct {
	assignmentRepo *repository.AssignmentRepository
	manuscriptRepo *repository.ManuscriptRepository
	userRepo       *repository.UserRepository
	reviewerIndex  *policy.ReviewerIndex
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	assignmentRepo *repository.AssignmentRepository,
	manuscriptRepo *repository.ManuscriptRepository,
	userRepo *repository.UserRepository,
	reviewerIndex *policy.ReviewerIndex,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		manuscriptRepo: manuscriptRepo,
		userRepo:       userRepo,
		reviewerIndex:  reviewerIndex,
	}
}

// Assign invites a reviewer to a manuscript
func (s *AssignmentService) Assign(manuscriptID, reviewerID string) (*models.ReviewAssignment, error) {
	manuscript, err := s.manuscriptRepo.GetByID(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manuscript: %w", err)
	}
	if manuscript == nil {
		return nil, ErrManuscriptNotFound
	}

	authorIDs, err := s.manuscriptRepo.ListAuthorIDs(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuscript authors: %w", err)
	}
	for _, authorID := range authorIDs {
		if authorID == reviewerID {
			return nil, ErrAuthorAsReviewer
		}
	}

	assignment := &models.ReviewAssignment{
		ManuscriptID: manuscriptID,
		ReviewerID:   reviewerID,
		Status:       models.AssignmentPending,
	}
	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}

	s.reviewerIndex.Invalidate(manuscriptID)

	slog.Info("reviewer assigned",
		"manuscript_id", manuscriptID,
		"reviewer_id", reviewerID,
		"assignment_id", assignment.ID,
	)

	return assignment, nil
}

// UpdateStatus transitions an assignment between lifecycle states
func (s *AssignmentService) UpdateStatus(assignmentID string, status models.AssignmentStatus) error {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	if err := s.assignmentRepo.UpdateStatus(assignmentID, status); err != nil {
		return err
	}

	// Status changes affect disclosure (after_all_submit completeness),
	// not ordinals, but the cached assignment list must stay current.
	s.reviewerIndex.Invalidate(assignment.ManuscriptID)

	return nil
}

// Remove withdraws a review assignment
func (s *AssignmentService) Remove(assignmentID string) error {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}

	if err := s.assignmentRepo.Delete(assignmentID); err != nil {
		return err
	}

	s.reviewerIndex.Invalidate(assignment.ManuscriptID)

	slog.Info("reviewer assignment removed",
		"manuscript_id", assignment.ManuscriptID,
		"reviewer_id", assignment.ReviewerID,
	)

	return nil
}

// GetByID retrieves a review assignment
func (s *AssignmentService) GetByID(assignmentID string) (*models.ReviewAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

// ListByManuscript returns a manuscript's assignments in assignment order
func (s *AssignmentService) ListByManuscript(manuscriptID string) ([]models.ReviewAssignment, error) {
	return s.assignmentRepo.ListByManuscript(manuscriptID)
}
