package policy

import (
	"testing"

	"peerdesk/internal/models"
)

func TestAuthorCanSeeReviewPrivacyGate(t *testing.T) {
	c := testContext(models.PhaseUnderReview, openConfig())

	// Realtime policy still never discloses reviewer-only material to authors.
	if AuthorCanSeeReview(c, models.PrivacyReviewerOnly) {
		t.Error("Reviewer-only message must stay hidden from authors")
	}
	if AuthorCanSeeReview(c, models.PrivacyEditorOnly) {
		t.Error("Editor-only message must stay hidden from authors")
	}
	if !AuthorCanSeeReview(c, models.PrivacyAuthorVisible) {
		t.Error("Author-visible message should be disclosed under realtime policy")
	}
	if !AuthorCanSeeReview(c, models.PrivacyPublic) {
		t.Error("Public message should be disclosed under realtime policy")
	}
}

func TestAuthorCanSeeReviewOnReleaseMonotonicity(t *testing.T) {
	cfg := openConfig()
	cfg.AuthorSeesReviews = models.DisclosureOnRelease

	phases := []struct {
		phase models.WorkflowPhase
		want  bool
	}{
		{models.PhaseSubmitted, false},
		{models.PhaseUnderReview, false},
		{models.PhaseDeliberation, false},
		{models.PhaseAuthorResponding, true},
		{models.PhaseReleased, true},
	}
	for _, tc := range phases {
		c := testContext(tc.phase, cfg)
		got := AuthorCanSeeReview(c, models.PrivacyAuthorVisible)
		if got != tc.want {
			t.Errorf("Phase %s: expected %v, got %v", tc.phase, tc.want, got)
		}
	}
}

func TestAuthorCanSeeReviewNever(t *testing.T) {
	cfg := openConfig()
	cfg.AuthorSeesReviews = models.DisclosureNever

	for _, phase := range []models.WorkflowPhase{models.PhaseUnderReview, models.PhaseReleased} {
		c := testContext(phase, cfg)
		if AuthorCanSeeReview(c, models.PrivacyAuthorVisible) {
			t.Errorf("Phase %s: never policy must not disclose", phase)
		}
	}
}

func TestReviewersCanSeeEachOtherModes(t *testing.T) {
	c := testContext(models.PhaseUnderReview, openConfig())
	if !ReviewersCanSeeEachOther(c) {
		t.Error("Realtime policy should disclose reviewer messages")
	}

	c = testContext(models.PhaseReleased, blindConfig())
	if ReviewersCanSeeEachOther(c) {
		t.Error("Never policy must not disclose, even after release")
	}
}

func TestReviewersCanSeeEachOtherAfterAllSubmitByPhase(t *testing.T) {
	cfg := openConfig()
	cfg.ReviewersSeeEachOther = models.DisclosureAfterAllSubmit

	for _, phase := range []models.WorkflowPhase{models.PhaseDeliberation, models.PhaseReleased, models.PhaseAuthorResponding} {
		c := testContext(phase, cfg)
		if !ReviewersCanSeeEachOther(c) {
			t.Errorf("Phase %s should disclose under after_all_submit", phase)
		}
	}

	c := testContext(models.PhaseUnderReview, cfg)
	if ReviewersCanSeeEachOther(c) {
		t.Error("Under review with incomplete assignments must not disclose")
	}
}

func TestReviewersCanSeeEachOtherAfterAllSubmitByCompleteness(t *testing.T) {
	cfg := openConfig()
	cfg.ReviewersSeeEachOther = models.DisclosureAfterAllSubmit

	// All active assignments completed: disclosed even while under review.
	c := testContext(models.PhaseUnderReview, cfg)
	c.Assignments = []models.ReviewAssignment{
		assignment("rev-1", models.AssignmentCompleted, 0),
		assignment("rev-2", models.AssignmentCompleted, 1),
	}
	if !ReviewersCanSeeEachOther(c) {
		t.Error("All reviews completed should disclose regardless of phase")
	}

	// A declined assignment does not block completeness.
	c.Assignments = append(c.Assignments, assignment("rev-3", models.AssignmentDeclined, 2))
	if !ReviewersCanSeeEachOther(c) {
		t.Error("Declined assignments must not count against completeness")
	}

	// One review still in progress blocks disclosure.
	c.Assignments = append(c.Assignments, assignment("rev-4", models.AssignmentInProgress, 3))
	if ReviewersCanSeeEachOther(c) {
		t.Error("In-progress review should block disclosure")
	}
}

func TestReviewersCanSeeEachOtherAfterAllSubmitNoAssignments(t *testing.T) {
	cfg := openConfig()
	cfg.ReviewersSeeEachOther = models.DisclosureAfterAllSubmit

	c := testContext(models.PhaseUnderReview, cfg)
	c.Assignments = nil
	if ReviewersCanSeeEachOther(c) {
		t.Error("Zero active assignments means nothing to disclose yet")
	}

	// Only declined/pending assignments count as zero active ones.
	c.Assignments = []models.ReviewAssignment{
		assignment("rev-1", models.AssignmentDeclined, 0),
		assignment("rev-2", models.AssignmentPending, 1),
	}
	if ReviewersCanSeeEachOther(c) {
		t.Error("Declined and pending assignments alone must not disclose")
	}
}

func TestReviewersCanSeeAuthorResponses(t *testing.T) {
	c := testContext(models.PhaseUnderReview, openConfig())
	if !ReviewersCanSeeAuthorResponses(c) {
		t.Error("Realtime policy should show author responses immediately")
	}

	c = testContext(models.PhaseUnderReview, blindConfig())
	if ReviewersCanSeeAuthorResponses(c) {
		t.Error("On-release policy must defer author responses while under review")
	}

	c = testContext(models.PhaseReleased, blindConfig())
	if !ReviewersCanSeeAuthorResponses(c) {
		t.Error("On-release policy should show author responses after release")
	}
}
