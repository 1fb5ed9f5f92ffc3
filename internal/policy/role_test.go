package policy

import (
	"testing"

	"peerdesk/internal/models"
)

func TestResolveViewerRoleAnonymous(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	role := ResolveViewerRole(c, Viewer{})
	if role != RolePublic {
		t.Errorf("Expected public for anonymous viewer, got %s", role)
	}
}

func TestResolveViewerRoleGlobalPrecedence(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	// Admin wins even for a user who is also a listed author.
	role := ResolveViewerRole(c, Viewer{UserID: "author-1", GlobalRole: globalRole(models.GlobalRoleAdmin)})
	if role != RoleAdmin {
		t.Errorf("Expected admin, got %s", role)
	}

	role = ResolveViewerRole(c, Viewer{UserID: "rev-1", GlobalRole: globalRole(models.GlobalRoleEditorInChief)})
	if role != RoleEditor {
		t.Errorf("Expected editor for editor-in-chief, got %s", role)
	}

	role = ResolveViewerRole(c, Viewer{UserID: "someone", GlobalRole: globalRole(models.GlobalRoleActionEditor)})
	if role != RoleEditor {
		t.Errorf("Expected editor for action editor, got %s", role)
	}
}

func TestResolveViewerRoleManuscriptMembership(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	if role := ResolveViewerRole(c, Viewer{UserID: "author-2"}); role != RoleAuthor {
		t.Errorf("Expected author, got %s", role)
	}
	if role := ResolveViewerRole(c, Viewer{UserID: "rev-2"}); role != RoleReviewer {
		t.Errorf("Expected reviewer, got %s", role)
	}
	if role := ResolveViewerRole(c, Viewer{UserID: "stranger"}); role != RolePublic {
		t.Errorf("Expected public for unrelated user, got %s", role)
	}
}

func TestResolveViewerRoleAuthorBeforeReviewer(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)
	c.AuthorIDs = append(c.AuthorIDs, "rev-1")

	// A user who is both author and reviewer resolves as author.
	if role := ResolveViewerRole(c, Viewer{UserID: "rev-1"}); role != RoleAuthor {
		t.Errorf("Expected author to take precedence over reviewer, got %s", role)
	}
}

func TestResolveViewerRoleDeclinedAssignmentStillReviewer(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)
	c.Assignments = []models.ReviewAssignment{
		assignment("rev-1", models.AssignmentDeclined, 0),
	}

	if role := ResolveViewerRole(c, Viewer{UserID: "rev-1"}); role != RoleReviewer {
		t.Errorf("Expected reviewer for any assignment status, got %s", role)
	}
}

func TestResolveAuthorRoleBot(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	bot := &models.User{ID: "bot-1", IsBot: true}
	if role := ResolveAuthorRole(c, bot); role != RoleEditor {
		t.Errorf("Expected bot to resolve as editor, got %s", role)
	}
}

func TestResolveAuthorRoleNilUser(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	if role := ResolveAuthorRole(c, nil); role != RolePublic {
		t.Errorf("Expected public for nil author, got %s", role)
	}
}

func TestResolveAuthorRoleMembership(t *testing.T) {
	c := testContext(models.PhaseUnderReview, nil)

	if role := ResolveAuthorRole(c, &models.User{ID: "author-1"}); role != RoleAuthor {
		t.Errorf("Expected author, got %s", role)
	}
	if role := ResolveAuthorRole(c, &models.User{ID: "rev-1"}); role != RoleReviewer {
		t.Errorf("Expected reviewer, got %s", role)
	}
	if role := ResolveAuthorRole(c, &models.User{ID: "u-1", GlobalRole: globalRole(models.GlobalRoleAdmin)}); role != RoleAdmin {
		t.Errorf("Expected admin, got %s", role)
	}
}
