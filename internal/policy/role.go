package policy

import (
	"peerdesk/internal/models"
)

// Role classifies a principal with respect to one manuscript.
type Role string

const (
	RolePublic   Role = "public"
	RoleAuthor   Role = "author"
	RoleReviewer Role = "reviewer"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

// ResolveViewerRole classifies the viewer with respect to the manuscript in
// the context. Global privilege short-circuits manuscript-specific lookups;
// absent or unknown inputs degrade to public.
func ResolveViewerRole(c *Context, v Viewer) Role {
	if v.UserID == "" {
		return RolePublic
	}
	if role, ok := globalRoleOf(v.GlobalRole); ok {
		return role
	}
	if c.IsAuthor(v.UserID) {
		return RoleAuthor
	}
	if c.IsReviewer(v.UserID) {
		return RoleReviewer
	}
	return RolePublic
}

// ResolveAuthorRole classifies a message's author using the same precedence
// as ResolveViewerRole. System bots speak with editorial authority.
func ResolveAuthorRole(c *Context, author *models.User) Role {
	if author == nil || author.ID == "" {
		return RolePublic
	}
	if author.IsBot {
		return RoleEditor
	}
	if role, ok := globalRoleOf(author.GlobalRole); ok {
		return role
	}
	if c.IsAuthor(author.ID) {
		return RoleAuthor
	}
	if c.IsReviewer(author.ID) {
		return RoleReviewer
	}
	return RolePublic
}

func globalRoleOf(gr *models.GlobalRole) (Role, bool) {
	if gr == nil {
		return RolePublic, false
	}
	switch *gr {
	case models.GlobalRoleAdmin:
		return RoleAdmin, true
	case models.GlobalRoleEditorInChief, models.GlobalRoleActionEditor:
		return RoleEditor, true
	default:
		return RolePublic, false
	}
}
