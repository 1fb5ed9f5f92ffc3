package policy

import (
	"strings"

	"peerdesk/internal/models"
)

// MaskResult is the outcome of a masking decision for one (viewer, author)
// pair.
type MaskResult struct {
	Masked    bool
	Pseudonym string
}

// MaskIfNeeded decides whether the message author's identity must be hidden
// from the viewer and, if so, under which pseudonym. First applicable rule
// wins. The only error source is the reviewer index loading assignments.
func MaskIfNeeded(c *Context, viewerRole, authorRole Role, authorID, viewerID string, idx *ReviewerIndex) (MaskResult, error) {
	if viewerRole == RoleAdmin || viewerRole == RoleEditor {
		return MaskResult{}, nil
	}
	if viewerID != "" && authorID == viewerID {
		// You always see your own identity.
		return MaskResult{}, nil
	}

	if viewerRole == RoleAuthor && authorRole == RoleReviewer {
		if reviewerIdentityDisclosed(c) {
			return MaskResult{}, nil
		}
		return reviewerPseudonym(c, authorID, idx)
	}

	if viewerRole == RoleReviewer && authorRole == RoleAuthor {
		if c.Config != nil && c.Config.ReviewersSeeAuthorIdentity == models.DisclosureNever {
			return MaskResult{Masked: true, Pseudonym: "Author"}, nil
		}
		return MaskResult{}, nil
	}

	if viewerRole == RoleReviewer && authorRole == RoleReviewer {
		if ReviewersCanSeeEachOther(c) {
			return MaskResult{}, nil
		}
		return reviewerPseudonym(c, authorID, idx)
	}

	return MaskResult{}, nil
}

// MaskMessageAuthor is the top-level entry point: given the real author
// record and the viewer, it returns the identity record to render. With no
// workflow config there is no anonymity guarantee to preserve, so the real
// identity is returned as-is.
func MaskMessageAuthor(c *Context, author *models.User, viewer Viewer, idx *ReviewerIndex) (models.AuthorView, error) {
	real := models.AuthorView{
		ID:       author.ID,
		Username: author.Username,
		Name:     author.Name,
		IsBot:    author.IsBot,
	}
	if c.Config == nil {
		return real, nil
	}

	viewerRole := ResolveViewerRole(c, viewer)
	authorRole := ResolveAuthorRole(c, author)

	result, err := MaskIfNeeded(c, viewerRole, authorRole, author.ID, viewer.UserID, idx)
	if err != nil {
		return models.AuthorView{}, err
	}
	if !result.Masked {
		return real, nil
	}

	return models.AuthorView{
		ID:         maskedID(author.ID),
		Username:   slugify(result.Pseudonym),
		Name:       result.Pseudonym,
		IsMasked:   true,
		OriginalID: author.ID,
	}, nil
}

func reviewerIdentityDisclosed(c *Context) bool {
	if c.Config == nil {
		return true
	}
	switch c.Config.AuthorSeesReviewerIdentity {
	case models.DisclosureAlways:
		return true
	case models.DisclosureOnRelease:
		return releasePhase(c.Manuscript.WorkflowPhase)
	default:
		return false
	}
}

func reviewerPseudonym(c *Context, reviewerID string, idx *ReviewerIndex) (MaskResult, error) {
	ordinal, err := idx.IndexOf(c.Manuscript.ID, reviewerID)
	if err != nil {
		return MaskResult{}, err
	}
	return MaskResult{Masked: true, Pseudonym: "Reviewer " + letterFor(ordinal)}, nil
}

// letterFor maps ordinal 1 to "A", 2 to "B", and so on.
func letterFor(n int) string {
	return string(rune('A' + n - 1))
}

func maskedID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "masked-" + id
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}
