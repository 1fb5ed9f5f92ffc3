package policy

import (
	"time"

	"peerdesk/internal/models"
)

func testContext(phase models.WorkflowPhase, cfg *models.WorkflowConfig) *Context {
	return &Context{
		Manuscript: models.Manuscript{
			ID:            "ms-1",
			JournalID:     "journal-1",
			WorkflowPhase: phase,
			WorkflowRound: 1,
		},
		AuthorIDs: []string{"author-1", "author-2"},
		Assignments: []models.ReviewAssignment{
			assignment("rev-1", models.AssignmentAccepted, 0),
			assignment("rev-2", models.AssignmentAccepted, time.Hour),
		},
		Config: cfg,
	}
}

func assignment(reviewerID string, status models.AssignmentStatus, offset time.Duration) models.ReviewAssignment {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.ReviewAssignment{
		ID:           "assign-" + reviewerID,
		ManuscriptID: "ms-1",
		ReviewerID:   reviewerID,
		Status:       status,
		AssignedAt:   base.Add(offset),
	}
}

func globalRole(r models.GlobalRole) *models.GlobalRole {
	return &r
}

func openConfig() *models.WorkflowConfig {
	return &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureRealtime,
		AuthorSeesReviewerIdentity:  models.DisclosureAlways,
		ReviewersSeeEachOther:       models.DisclosureRealtime,
		ReviewersSeeAuthorResponses: models.DisclosureRealtime,
		ReviewersSeeAuthorIdentity:  models.DisclosureAlways,
	}
}

func blindConfig() *models.WorkflowConfig {
	return &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureOnRelease,
		AuthorSeesReviewerIdentity:  models.DisclosureNever,
		ReviewersSeeEachOther:       models.DisclosureNever,
		ReviewersSeeAuthorResponses: models.DisclosureOnRelease,
		ReviewersSeeAuthorIdentity:  models.DisclosureNever,
	}
}

// fakeAssignmentSource serves a fixed assignment list and counts loads
type fakeAssignmentSource struct {
	assignments []models.ReviewAssignment
	loads       int
	err         error
}

func (f *fakeAssignmentSource) ListByManuscript(manuscriptID string) ([]models.ReviewAssignment, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.ReviewAssignment{}
	for _, a := range f.assignments {
		if a.ManuscriptID == manuscriptID {
			out = append(out, a)
		}
	}
	return out, nil
}
