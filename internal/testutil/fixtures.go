package testutil

import (
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"peerdesk/internal/models"
	"peerdesk/internal/repository"
)

// Fixtures holds test data: a journal with a blind-review policy, one
// manuscript, its author, two reviewers, and an editor
type Fixtures struct {
	DB         *sql.DB
	Admin      *models.User
	Editor     *models.User
	Author     *models.User
	ReviewerA  *models.User
	ReviewerB  *models.User
	Journal    *models.Journal
	Manuscript *models.Manuscript
}

// SetupFixtures creates test data
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	fixtures := &Fixtures{DB: db}

	admin := models.GlobalRoleAdmin
	editor := models.GlobalRoleActionEditor
	fixtures.Admin = createUser(t, db, "admin@test.com", "admin", "Test Admin", &admin)
	fixtures.Editor = createUser(t, db, "editor@test.com", "editor", "Test Editor", &editor)
	fixtures.Author = createUser(t, db, "author@test.com", "author", "Test Author", nil)
	fixtures.ReviewerA = createUser(t, db, "reviewer-a@test.com", "reviewer-a", "Reviewer One", nil)
	fixtures.ReviewerB = createUser(t, db, "reviewer-b@test.com", "reviewer-b", "Reviewer Two", nil)

	journalRepo := repository.NewJournalRepository(db)
	fixtures.Journal = &models.Journal{Name: "Test Journal", Slug: "test-journal"}
	if err := journalRepo.Create(fixtures.Journal); err != nil {
		t.Fatalf("Failed to create journal: %v", err)
	}
	err := journalRepo.UpsertWorkflowConfig(fixtures.Journal.ID, &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureOnRelease,
		AuthorSeesReviewerIdentity:  models.DisclosureNever,
		ReviewersSeeEachOther:       models.DisclosureAfterAllSubmit,
		ReviewersSeeAuthorResponses: models.DisclosureRealtime,
		ReviewersSeeAuthorIdentity:  models.DisclosureNever,
	})
	if err != nil {
		t.Fatalf("Failed to create workflow config: %v", err)
	}

	manuscriptRepo := repository.NewManuscriptRepository(db)
	fixtures.Manuscript = &models.Manuscript{
		JournalID:   fixtures.Journal.ID,
		Title:       "A Study of Test Data",
		SubmittedBy: fixtures.Author.ID,
	}
	if err := manuscriptRepo.Create(fixtures.Manuscript); err != nil {
		t.Fatalf("Failed to create manuscript: %v", err)
	}

	assignmentRepo := repository.NewAssignmentRepository(db)
	base := time.Now().Add(-time.Hour)
	for i, reviewer := range []*models.User{fixtures.ReviewerA, fixtures.ReviewerB} {
		err := assignmentRepo.Create(&models.ReviewAssignment{
			ManuscriptID: fixtures.Manuscript.ID,
			ReviewerID:   reviewer.ID,
			Status:       models.AssignmentAccepted,
			AssignedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to create assignment: %v", err)
		}
	}

	return fixtures
}

func createUser(t *testing.T, db *sql.DB, email, username, name string, role *models.GlobalRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
		Name:         name,
		GlobalRole:   role,
		IsActive:     true,
	}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}
