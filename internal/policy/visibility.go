package policy

import (
	"peerdesk/internal/models"
)

// CanSee decides whether the viewer may see the message at all. With no
// workflow config the message's own privacy level applies flatly (simple
// mode); with one, phase-dependent disclosure rules take over. Visibility is
// decided independently of masking: callers apply MaskMessageAuthor to every
// visible message as a separate step.
//
// authorRole is the message author's role as resolved by ResolveAuthorRole.
func CanSee(c *Context, viewer Viewer, msg models.Message, authorRole Role) bool {
	viewerRole := ResolveViewerRole(c, viewer)

	if c.Config == nil {
		return simpleCanSee(viewerRole, msg.Privacy)
	}

	// Public messages are visible to everyone in both modes; the disclosure
	// knobs defer only non-public material.
	if msg.Privacy == models.PrivacyPublic {
		return true
	}

	switch viewerRole {
	case RoleAdmin, RoleEditor:
		return true
	case RoleAuthor:
		if authorRole == RoleReviewer {
			return AuthorCanSeeReview(c, msg.Privacy)
		}
		return true
	case RoleReviewer:
		if authorRole == RoleReviewer && msg.AuthorID != viewer.UserID {
			return ReviewersCanSeeEachOther(c)
		}
		if authorRole == RoleAuthor {
			return ReviewersCanSeeAuthorResponses(c)
		}
		return true
	case RolePublic:
		return msg.Privacy == models.PrivacyPublic
	default:
		return false
	}
}

// simpleCanSee evaluates the flat privacy lattice used when a journal has no
// workflow policy. Unrecognized privacy values deny.
func simpleCanSee(viewerRole Role, privacy models.MessagePrivacy) bool {
	switch privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyAuthorVisible:
		return viewerRole == RoleAdmin || viewerRole == RoleEditor ||
			viewerRole == RoleAuthor || viewerRole == RoleReviewer
	case models.PrivacyReviewerOnly:
		return viewerRole == RoleAdmin || viewerRole == RoleEditor || viewerRole == RoleReviewer
	case models.PrivacyEditorOnly:
		return viewerRole == RoleAdmin || viewerRole == RoleEditor
	case models.PrivacyAdminOnly:
		return viewerRole == RoleAdmin
	default:
		return false
	}
}
