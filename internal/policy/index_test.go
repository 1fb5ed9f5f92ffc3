package policy

import (
	"errors"
	"testing"
	"time"

	"peerdesk/internal/models"
)

func TestIndexOfAssignsInAssignedAtOrder(t *testing.T) {
	source := &fakeAssignmentSource{
		assignments: []models.ReviewAssignment{
			assignment("rev-c", models.AssignmentAccepted, 2*time.Hour),
			assignment("rev-a", models.AssignmentAccepted, 0),
			assignment("rev-b", models.AssignmentAccepted, time.Hour),
		},
	}
	idx := NewReviewerIndex(source)

	// t1 < t2 < t3 yields ordinals 1, 2, 3 regardless of source order.
	for i, reviewerID := range []string{"rev-a", "rev-b", "rev-c"} {
		ordinal, err := idx.IndexOf("ms-1", reviewerID)
		if err != nil {
			t.Fatalf("IndexOf(%s) failed: %v", reviewerID, err)
		}
		if ordinal != i+1 {
			t.Errorf("Expected ordinal %d for %s, got %d", i+1, reviewerID, ordinal)
		}
	}
}

func TestIndexOfStableAcrossCalls(t *testing.T) {
	source := &fakeAssignmentSource{
		assignments: []models.ReviewAssignment{
			assignment("rev-1", models.AssignmentAccepted, 0),
			assignment("rev-2", models.AssignmentAccepted, time.Hour),
		},
	}
	idx := NewReviewerIndex(source)

	first, err := idx.IndexOf("ms-1", "rev-2")
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	second, err := idx.IndexOf("ms-1", "rev-2")
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}

	if first != second {
		t.Errorf("Ordinal changed between calls: %d then %d", first, second)
	}
	if source.loads != 1 {
		t.Errorf("Expected a single assignment load, got %d", source.loads)
	}
}

func TestIndexOfLateReviewerAppends(t *testing.T) {
	source := &fakeAssignmentSource{
		assignments: []models.ReviewAssignment{
			assignment("rev-1", models.AssignmentAccepted, 0),
			assignment("rev-2", models.AssignmentAccepted, time.Hour),
		},
	}
	idx := NewReviewerIndex(source)

	if _, err := idx.IndexOf("ms-1", "rev-1"); err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}

	// A reviewer unknown at population time gets the next ordinal.
	ordinal, err := idx.IndexOf("ms-1", "rev-late")
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if ordinal != 3 {
		t.Errorf("Expected late reviewer to get ordinal 3, got %d", ordinal)
	}

	// Existing ordinals are not re-sorted.
	ordinal, err = idx.IndexOf("ms-1", "rev-2")
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if ordinal != 2 {
		t.Errorf("Expected rev-2 to keep ordinal 2, got %d", ordinal)
	}
}

func TestInvalidateReloadsFromSource(t *testing.T) {
	source := &fakeAssignmentSource{
		assignments: []models.ReviewAssignment{
			assignment("rev-1", models.AssignmentAccepted, 0),
		},
	}
	idx := NewReviewerIndex(source)

	if _, err := idx.IndexOf("ms-1", "rev-1"); err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}

	// A new assignment with an earlier timestamp lands first after
	// invalidation.
	source.assignments = append(source.assignments,
		assignment("rev-0", models.AssignmentAccepted, -time.Hour))
	idx.Invalidate("ms-1")

	ordinal, err := idx.IndexOf("ms-1", "rev-0")
	if err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if ordinal != 1 {
		t.Errorf("Expected rev-0 to get ordinal 1 after invalidation, got %d", ordinal)
	}

	if v := idx.Version("ms-1"); v != 1 {
		t.Errorf("Expected version 1 after one invalidation, got %d", v)
	}
}

func TestInvalidateAll(t *testing.T) {
	source := &fakeAssignmentSource{
		assignments: []models.ReviewAssignment{
			assignment("rev-1", models.AssignmentAccepted, 0),
		},
	}
	idx := NewReviewerIndex(source)

	if _, err := idx.IndexOf("ms-1", "rev-1"); err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}

	idx.InvalidateAll()

	if _, err := idx.IndexOf("ms-1", "rev-1"); err != nil {
		t.Fatalf("IndexOf failed: %v", err)
	}
	if source.loads != 2 {
		t.Errorf("Expected reload after InvalidateAll, got %d loads", source.loads)
	}
}

func TestIndexOfPropagatesLoadError(t *testing.T) {
	source := &fakeAssignmentSource{err: errors.New("connection refused")}
	idx := NewReviewerIndex(source)

	if _, err := idx.IndexOf("ms-1", "rev-1"); err == nil {
		t.Error("Expected error when the assignment source fails")
	}
}
