package service

import (
	"errors"
	"testing"
	"time"

	"peerdesk/internal/models"
	"peerdesk/internal/policy"
)

type fakeStore struct {
	manuscripts   map[string]*models.Manuscript
	authorIDs     map[string][]string
	journals      map[string]*models.Journal
	configs       map[string]*models.WorkflowConfig
	users         map[string]*models.User
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message
	assignments   map[string][]models.ReviewAssignment
}

func (f *fakeStore) GetByID(id string) (*models.Manuscript, error) {
	return f.manuscripts[id], nil
}

func (f *fakeStore) ListAuthorIDs(manuscriptID string) ([]string, error) {
	return f.authorIDs[manuscriptID], nil
}

func (f *fakeStore) GetByIDs(ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users[id] = u
		}
	}
	return users, nil
}

func (f *fakeStore) GetConversationByID(id string) (*models.Conversation, error) {
	return f.conversations[id], nil
}

func (f *fakeStore) ListConversationsByManuscript(manuscriptID string) ([]models.Conversation, error) {
	var result []models.Conversation
	for _, c := range f.conversations {
		if c.ManuscriptID == manuscriptID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeStore) ListMessagesByConversation(conversationID string) ([]models.Message, error) {
	return f.messages[conversationID], nil
}

func (f *fakeStore) CreateConversation(conversation *models.Conversation) error {
	conversation.ID = "conv-new"
	f.conversations[conversation.ID] = conversation
	return nil
}

func (f *fakeStore) CreateMessage(message *models.Message) error {
	message.ID = "msg-new"
	f.messages[message.ConversationID] = append(f.messages[message.ConversationID], *message)
	return nil
}

func (f *fakeStore) ListByManuscript(manuscriptID string) ([]models.ReviewAssignment, error) {
	return f.assignments[manuscriptID], nil
}

type fakeJournalStore struct {
	store *fakeStore
}

func (f *fakeJournalStore) GetByID(id string) (*models.Journal, error) {
	return f.store.journals[id], nil
}

func (f *fakeJournalStore) GetWorkflowConfig(journalID string) (*models.WorkflowConfig, error) {
	return f.store.configs[journalID], nil
}

func blindReviewStore(phase models.WorkflowPhase, config *models.WorkflowConfig) *fakeStore {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeStore{
		manuscripts: map[string]*models.Manuscript{
			"ms-1": {ID: "ms-1", JournalID: "j-1", Title: "On Retrieval", WorkflowPhase: phase, WorkflowRound: 1, SubmittedBy: "author-1"},
		},
		authorIDs: map[string][]string{"ms-1": {"author-1"}},
		journals: map[string]*models.Journal{
			"j-1": {ID: "j-1", Name: "Acta Exemplaria", Slug: "acta-exemplaria"},
		},
		configs: map[string]*models.WorkflowConfig{"j-1": config},
		users: map[string]*models.User{
			"author-1": {ID: "author-1", Username: "ada", Name: "Ada Author"},
			"rev-1":    {ID: "rev-1", Username: "rob", Name: "Rob Reviewer"},
			"rev-2":    {ID: "rev-2", Username: "rita", Name: "Rita Reviewer"},
			"editor-1": {ID: "editor-1", Username: "ed", Name: "Ed Editor"},
		},
		conversations: map[string]*models.Conversation{
			"conv-1": {ID: "conv-1", ManuscriptID: "ms-1", Subject: "Round 1", CreatedBy: "editor-1"},
		},
		messages: map[string][]models.Message{
			"conv-1": {
				{ID: "m-1", ConversationID: "conv-1", AuthorID: "author-1", Privacy: models.PrivacyAuthorVisible, Body: "submission note"},
				{ID: "m-2", ConversationID: "conv-1", AuthorID: "rev-1", Privacy: models.PrivacyAuthorVisible, Body: "review one"},
				{ID: "m-3", ConversationID: "conv-1", AuthorID: "rev-2", Privacy: models.PrivacyReviewerOnly, Body: "internal remark"},
			},
		},
		assignments: map[string][]models.ReviewAssignment{
			"ms-1": {
				{ID: "a-1", ManuscriptID: "ms-1", ReviewerID: "rev-1", Status: models.AssignmentAccepted, AssignedAt: base},
				{ID: "a-2", ManuscriptID: "ms-1", ReviewerID: "rev-2", Status: models.AssignmentAccepted, AssignedAt: base.Add(time.Hour)},
			},
		},
	}
}

func newTestService(store *fakeStore) *ConversationService {
	return NewConversationService(
		store,
		store,
		&fakeJournalStore{store: store},
		store,
		store,
		policy.NewReviewerIndex(store),
		nil,
	)
}

func TestGetConversationForAuthorMasksReviewers(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureRealtime,
		AuthorSeesReviewerIdentity:  models.DisclosureNever,
		ReviewersSeeEachOther:       models.DisclosureNever,
		ReviewersSeeAuthorResponses: models.DisclosureRealtime,
		ReviewersSeeAuthorIdentity:  models.DisclosureAlways,
	})
	svc := newTestService(store)

	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{UserID: "author-1"})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	// The reviewer-only remark is filtered out for the author.
	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(result.Messages))
	}

	own := result.Messages[0]
	if own.ID != "m-1" {
		t.Errorf("expected first visible message m-1, got %s", own.ID)
	}
	if own.Author.IsMasked {
		t.Error("author's own message must not be masked")
	}
	if own.Author.Name != "Ada Author" {
		t.Errorf("expected real author identity, got %q", own.Author.Name)
	}

	review := result.Messages[1]
	if review.ID != "m-2" {
		t.Errorf("expected second visible message m-2, got %s", review.ID)
	}
	if !review.Author.IsMasked {
		t.Error("reviewer identity must be masked for the author")
	}
	if review.Author.Name != "Reviewer A" {
		t.Errorf("expected pseudonym Reviewer A, got %q", review.Author.Name)
	}
	if review.Author.ID == "rev-1" {
		t.Error("masked author view must not carry the real user ID")
	}
}

func TestGetConversationForReviewerHidesOtherReviewers(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureRealtime,
		AuthorSeesReviewerIdentity:  models.DisclosureNever,
		ReviewersSeeEachOther:       models.DisclosureNever,
		ReviewersSeeAuthorResponses: models.DisclosureRealtime,
		ReviewersSeeAuthorIdentity:  models.DisclosureAlways,
	})
	svc := newTestService(store)

	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{UserID: "rev-1"})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	// rev-1 sees the author's message and their own, not rev-2's.
	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(result.Messages))
	}
	for _, msg := range result.Messages {
		if msg.ID == "m-3" {
			t.Error("another reviewer's message leaked through")
		}
	}

	authorMsg := result.Messages[0]
	if authorMsg.Author.IsMasked {
		t.Error("author identity should be disclosed when reviewers_see_author_identity is always")
	}
}

func TestGetConversationForEditorSeesEverythingUnmasked(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, &models.WorkflowConfig{
		AuthorSeesReviews:           models.DisclosureNever,
		AuthorSeesReviewerIdentity:  models.DisclosureNever,
		ReviewersSeeEachOther:       models.DisclosureNever,
		ReviewersSeeAuthorResponses: models.DisclosureOnRelease,
		ReviewersSeeAuthorIdentity:  models.DisclosureNever,
	})
	svc := newTestService(store)

	role := models.GlobalRoleActionEditor
	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{UserID: "editor-1", GlobalRole: &role})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	if len(result.Messages) != 3 {
		t.Fatalf("expected all 3 messages visible, got %d", len(result.Messages))
	}
	for _, msg := range result.Messages {
		if msg.Author.IsMasked {
			t.Errorf("message %s masked for an editor", msg.ID)
		}
	}
}

func TestGetConversationSimpleModeFallsBackToPrivacy(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	store.configs = map[string]*models.WorkflowConfig{}
	svc := newTestService(store)

	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{UserID: "author-1"})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	// Simple mode: AUTHOR_VISIBLE messages visible, REVIEWER_ONLY hidden,
	// and no identity is ever masked.
	if len(result.Messages) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(result.Messages))
	}
	for _, msg := range result.Messages {
		if msg.Author.IsMasked {
			t.Errorf("message %s masked in simple mode", msg.ID)
		}
	}
}

func TestGetConversationAnonymousViewerSeesOnlyPublic(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	store.configs = map[string]*models.WorkflowConfig{}
	store.messages["conv-1"] = append(store.messages["conv-1"], models.Message{
		ID: "m-4", ConversationID: "conv-1", AuthorID: "editor-1", Privacy: models.PrivacyPublic, Body: "announcement",
	})
	svc := newTestService(store)

	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 visible message, got %d", len(result.Messages))
	}
	if result.Messages[0].ID != "m-4" {
		t.Errorf("expected only the public message, got %s", result.Messages[0].ID)
	}
}

func TestFilePolicyFallbackBySlug(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	store.configs = map[string]*models.WorkflowConfig{}
	svc := NewConversationService(
		store,
		store,
		&fakeJournalStore{store: store},
		store,
		store,
		policy.NewReviewerIndex(store),
		map[string]models.WorkflowConfig{
			"acta-exemplaria": {
				AuthorSeesReviews:           models.DisclosureNever,
				AuthorSeesReviewerIdentity:  models.DisclosureNever,
				ReviewersSeeEachOther:       models.DisclosureNever,
				ReviewersSeeAuthorResponses: models.DisclosureRealtime,
				ReviewersSeeAuthorIdentity:  models.DisclosureAlways,
			},
		},
	)

	result, err := svc.GetConversationForViewer("conv-1", policy.Viewer{UserID: "author-1"})
	if err != nil {
		t.Fatalf("GetConversationForViewer failed: %v", err)
	}

	// The file policy hides reviews from the author entirely.
	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 visible message, got %d", len(result.Messages))
	}
	if result.Messages[0].ID != "m-1" {
		t.Errorf("expected only the author's own message, got %s", result.Messages[0].ID)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	svc := newTestService(store)

	_, err := svc.GetConversationForViewer("conv-missing", policy.Viewer{UserID: "author-1"})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestPostMessageRequiresParticipant(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	svc := newTestService(store)

	_, err := svc.PostMessage("conv-1", policy.Viewer{UserID: "stranger-1"}, models.PrivacyAuthorVisible, "hello")
	if !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}

	msg, err := svc.PostMessage("conv-1", policy.Viewer{UserID: "rev-1"}, models.PrivacyReviewerOnly, "a note")
	if err != nil {
		t.Fatalf("PostMessage failed for a participant: %v", err)
	}
	if msg.AuthorID != "rev-1" {
		t.Errorf("expected author rev-1, got %s", msg.AuthorID)
	}
}

func TestPostMessageRejectsUnknownPrivacy(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	svc := newTestService(store)

	_, err := svc.PostMessage("conv-1", policy.Viewer{UserID: "rev-1"}, models.MessagePrivacy("SECRET"), "a note")
	if !errors.Is(err, ErrInvalidPrivacy) {
		t.Errorf("expected ErrInvalidPrivacy, got %v", err)
	}

	// Empty privacy is allowed; the storage layer applies the default.
	if _, err := svc.PostMessage("conv-1", policy.Viewer{UserID: "rev-1"}, "", "a note"); err != nil {
		t.Errorf("PostMessage with empty privacy failed: %v", err)
	}
}

func TestCreateConversationRequiresParticipant(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	svc := newTestService(store)

	if _, err := svc.CreateConversation("ms-1", "Side thread", policy.Viewer{}); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant for anonymous viewer, got %v", err)
	}

	conv, err := svc.CreateConversation("ms-1", "Side thread", policy.Viewer{UserID: "author-1"})
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.CreatedBy != "author-1" {
		t.Errorf("expected creator author-1, got %s", conv.CreatedBy)
	}
}

func TestGetConversationUnknownManuscript(t *testing.T) {
	store := blindReviewStore(models.PhaseUnderReview, nil)
	store.conversations["conv-orphan"] = &models.Conversation{ID: "conv-orphan", ManuscriptID: "ms-gone"}
	svc := newTestService(store)

	_, err := svc.GetConversationForViewer("conv-orphan", policy.Viewer{UserID: "author-1"})
	if !errors.Is(err, ErrManuscriptNotFound) {
		t.Errorf("expected ErrManuscriptNotFound, got %v", err)
	}
}
