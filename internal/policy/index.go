package policy

import (
	"fmt"
	"sort"
	"sync"

	"peerdesk/internal/models"
)

// AssignmentSource loads the review assignments for a manuscript. The
// implementation must return them ordered by assigned_at ascending.
type AssignmentSource interface {
	ListByManuscript(manuscriptID string) ([]models.ReviewAssignment, error)
}

// ReviewerIndex allocates each reviewer of a manuscript a stable ordinal
// (1, 2, 3, ...) used to derive pseudonym letters. Ordinals are assigned in
// assigned_at order on first reference to a manuscript and never change for
// the lifetime of the cache entry. Reviewers first seen after population are
// appended at the end: stability of an already-disclosed pseudonym wins over
// strict chronological order.
//
// The cache is shared process-wide. Concurrent first-population races are
// harmless: both loaders see the same deterministic assignment order and
// write the same ordinals.
type ReviewerIndex struct {
	mu       sync.Mutex
	source   AssignmentSource
	entries  map[string]map[string]int
	versions map[string]uint64
}

// NewReviewerIndex creates a reviewer index backed by the given source
func NewReviewerIndex(source AssignmentSource) *ReviewerIndex {
	return &ReviewerIndex{
		source:   source,
		entries:  make(map[string]map[string]int),
		versions: make(map[string]uint64),
	}
}

// IndexOf returns the reviewer's ordinal for the manuscript, populating the
// cache on first reference. A reviewer not present at population time
// receives the next unused ordinal.
func (ri *ReviewerIndex) IndexOf(manuscriptID, reviewerID string) (int, error) {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	ordinals, ok := ri.entries[manuscriptID]
	if !ok {
		assignments, err := ri.source.ListByManuscript(manuscriptID)
		if err != nil {
			return 0, fmt.Errorf("failed to load review assignments: %w", err)
		}
		sort.SliceStable(assignments, func(i, j int) bool {
			return assignments[i].AssignedAt.Before(assignments[j].AssignedAt)
		})
		ordinals = make(map[string]int, len(assignments))
		for _, a := range assignments {
			if _, seen := ordinals[a.ReviewerID]; !seen {
				ordinals[a.ReviewerID] = len(ordinals) + 1
			}
		}
		ri.entries[manuscriptID] = ordinals
	}

	ordinal, ok := ordinals[reviewerID]
	if !ok {
		// Assigned after the cache was populated: append, never re-sort.
		ordinal = len(ordinals) + 1
		ordinals[reviewerID] = ordinal
	}
	return ordinal, nil
}

// Invalidate drops the cached ordinals for one manuscript. Collaborators
// that create review assignments must call this before the next read.
func (ri *ReviewerIndex) Invalidate(manuscriptID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	delete(ri.entries, manuscriptID)
	ri.versions[manuscriptID]++
}

// InvalidateAll drops the cached ordinals for every manuscript
func (ri *ReviewerIndex) InvalidateAll() {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	for id := range ri.entries {
		ri.versions[id]++
	}
	ri.entries = make(map[string]map[string]int)
}

// Version returns the number of invalidations a manuscript's cache entry has
// seen. Useful for observing invalidation discipline in tests and tooling.
func (ri *ReviewerIndex) Version(manuscriptID string) uint64 {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return ri.versions[manuscriptID]
}
