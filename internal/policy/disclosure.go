package policy

import (
	"peerdesk/internal/models"
)

// AuthorCanSeeReview reports whether a manuscript author may currently see a
// review message with the given privacy level. Messages that are neither
// author-visible nor public are always hidden from authors, regardless of
// policy.
func AuthorCanSeeReview(c *Context, privacy models.MessagePrivacy) bool {
	if privacy != models.PrivacyAuthorVisible && privacy != models.PrivacyPublic {
		return false
	}
	if c.Config == nil {
		return false
	}
	switch c.Config.AuthorSeesReviews {
	case models.DisclosureRealtime:
		return true
	case models.DisclosureOnRelease:
		return releasePhase(c.Manuscript.WorkflowPhase)
	case models.DisclosureNever:
		return false
	default:
		return false
	}
}

// ReviewersCanSeeEachOther reports whether reviewers may currently see one
// another's messages. Under after_all_submit the answer derives from either
// the phase or the completeness of all active assignments; zero active
// assignments means there is nothing to disclose yet.
func ReviewersCanSeeEachOther(c *Context) bool {
	if c.Config == nil {
		return false
	}
	switch c.Config.ReviewersSeeEachOther {
	case models.DisclosureRealtime:
		return true
	case models.DisclosureNever:
		return false
	case models.DisclosureAfterAllSubmit:
		phase := c.Manuscript.WorkflowPhase
		if phase == models.PhaseDeliberation || releasePhase(phase) {
			return true
		}
		return allActiveAssignmentsCompleted(c.Assignments)
	default:
		return false
	}
}

// ReviewersCanSeeAuthorResponses reports whether reviewers may currently see
// messages written by the manuscript's authors. Author responses are never
// fully hidden from reviewers; only their timing is deferred.
func ReviewersCanSeeAuthorResponses(c *Context) bool {
	if c.Config == nil {
		return false
	}
	switch c.Config.ReviewersSeeAuthorResponses {
	case models.DisclosureRealtime:
		return true
	case models.DisclosureOnRelease:
		return releasePhase(c.Manuscript.WorkflowPhase)
	default:
		return false
	}
}

func allActiveAssignmentsCompleted(assignments []models.ReviewAssignment) bool {
	active := 0
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentAccepted, models.AssignmentInProgress, models.AssignmentCompleted:
			active++
			if a.Status != models.AssignmentCompleted {
				return false
			}
		}
	}
	return active > 0
}
