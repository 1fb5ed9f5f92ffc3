// Package policy implements the visibility and identity-masking rules for
// manuscript discussions: who may see a message, and whether its author must
// be rendered under a stable pseudonym.
//
// All decisions are pure functions over a Context assembled by the caller
// from already-loaded data. The one exception is the ReviewerIndex, which
// lazily loads review assignments to allocate pseudonym ordinals.
package policy

import (
	"peerdesk/internal/models"
)

// Viewer identifies the principal a conversation is being rendered for. An
// empty UserID means an anonymous (public) viewer.
type Viewer struct {
	UserID     string
	GlobalRole *models.GlobalRole
}

// Context is the immutable decision context for one manuscript: everything
// the policy predicates need, resolved up front so they never touch storage.
type Context struct {
	Manuscript  models.Manuscript
	AuthorIDs   []string
	Assignments []models.ReviewAssignment
	Config      *models.WorkflowConfig
}

// IsAuthor reports whether the user is a listed author of the manuscript
func (c *Context) IsAuthor(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.AuthorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the user holds a review assignment for the
// manuscript, in any status
func (c *Context) IsReviewer(userID string) bool {
	if userID == "" {
		return false
	}
	for _, a := range c.Assignments {
		if a.ReviewerID == userID {
			return true
		}
	}
	return false
}

// releasePhase reports whether the manuscript has reached a phase in which
// on_release disclosures take effect
func releasePhase(phase models.WorkflowPhase) bool {
	return phase == models.PhaseReleased || phase == models.PhaseAuthorResponding
}
