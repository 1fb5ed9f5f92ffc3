package service

import (
	"errors"
	"fmt"
	"log/slog"

	"peerdesk/internal/models"
	"peerdesk/internal/policy"
)

var (
	ErrManuscriptNotFound   = errors.New("manuscript not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this manuscript")
	ErrInvalidPrivacy       = errors.New("invalid message privacy level")
)

// validPrivacyLevels are the accepted values for a message's privacy tag.
// An empty value is allowed and defaults at the storage layer.
var validPrivacyLevels = map[models.MessagePrivacy]bool{
	models.PrivacyPublic:        true,
	models.PrivacyAuthorVisible: true,
	models.PrivacyReviewerOnly:  true,
	models.PrivacyEditorOnly:    true,
	models.PrivacyAdminOnly:     true,
}

// ManuscriptStore is the manuscript data the conversation service needs
type ManuscriptStore interface {
	GetByID(id string) (*models.Manuscript, error)
	ListAuthorIDs(manuscriptID string) ([]string, error)
}

// JournalStore loads journals and their stored disclosure policies
type JournalStore interface {
	GetByID(id string) (*models.Journal, error)
	GetWorkflowConfig(journalID string) (*models.WorkflowConfig, error)
}

// UserStore loads user records for identity rendering
type UserStore interface {
	GetByIDs(ids []string) (map[string]*models.User, error)
}

// ConversationStore loads and stores conversations and messages
type ConversationStore interface {
	GetConversationByID(id string) (*models.Conversation, error)
	ListConversationsByManuscript(manuscriptID string) ([]models.Conversation, error)
	ListMessagesByConversation(conversationID string) ([]models.Message, error)
	CreateConversation(conversation *models.Conversation) error
	CreateMessage(message *models.Message) error
}

// ConversationService renders manuscript discussions for a specific viewer:
// messages are filtered by the visibility rules and author identities are
// masked where the journal's disclosure policy requires it.
type ConversationService struct {
	conversationStore ConversationStore
	manuscriptStore   ManuscriptStore
	journalStore      JournalStore
	userStore         UserStore
	assignmentSource  policy.AssignmentSource
	reviewerIndex     *policy.ReviewerIndex
	filePolicies      map[string]models.WorkflowConfig
}

// NewConversationService creates a new conversation service. filePolicies
// holds per-journal default policies keyed by journal slug, consulted when a
// journal has no stored policy.
func NewConversationService(
	conversationStore ConversationStore,
	manuscriptStore ManuscriptStore,
	journalStore JournalStore,
	userStore UserStore,
	assignmentSource policy.AssignmentSource,
	reviewerIndex *policy.ReviewerIndex,
	filePolicies map[string]models.WorkflowConfig,
) *ConversationService {
	return &ConversationService{
		conversationStore: conversationStore,
		manuscriptStore:   manuscriptStore,
		journalStore:      journalStore,
		userStore:         userStore,
		assignmentSource:  assignmentSource,
		reviewerIndex:     reviewerIndex,
		filePolicies:      filePolicies,
	}
}

// GetConversationForViewer returns a conversation with exactly the messages
// the viewer is entitled to see, with author identities masked as required
func (s *ConversationService) GetConversationForViewer(conversationID string, viewer policy.Viewer) (*models.ConversationWithMessages, error) {
	conversation, err := s.conversationStore.GetConversationByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	decisionCtx, err := s.buildContext(conversation.ManuscriptID)
	if err != nil {
		return nil, err
	}

	messages, err := s.conversationStore.ListMessagesByConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	rendered, err := s.renderMessages(decisionCtx, viewer, messages)
	if err != nil {
		return nil, err
	}

	return &models.ConversationWithMessages{
		Conversation: *conversation,
		Messages:     rendered,
	}, nil
}

// GetManuscriptDiscussion returns all conversations on a manuscript, each
// filtered and masked for the viewer
func (s *ConversationService) GetManuscriptDiscussion(manuscriptID string, viewer policy.Viewer) ([]models.ConversationWithMessages, error) {
	decisionCtx, err := s.buildContext(manuscriptID)
	if err != nil {
		return nil, err
	}

	conversations, err := s.conversationStore.ListConversationsByManuscript(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]models.ConversationWithMessages, 0, len(conversations))
	for _, conversation := range conversations {
		messages, err := s.conversationStore.ListMessagesByConversation(conversation.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		rendered, err := s.renderMessages(decisionCtx, viewer, messages)
		if err != nil {
			return nil, err
		}

		result = append(result, models.ConversationWithMessages{
			Conversation: conversation,
			Messages:     rendered,
		})
	}

	return result, nil
}

// CreateConversation opens a new discussion thread on a manuscript. Only
// manuscript participants and editorial staff may open threads.
func (s *ConversationService) CreateConversation(manuscriptID, subject string, viewer policy.Viewer) (*models.Conversation, error) {
	decisionCtx, err := s.buildContext(manuscriptID)
	if err != nil {
		return nil, err
	}

	role := policy.ResolveViewerRole(decisionCtx, viewer)
	if role == policy.RolePublic {
		return nil, ErrNotParticipant
	}

	conversation := &models.Conversation{
		ManuscriptID: manuscriptID,
		Subject:      subject,
		CreatedBy:    viewer.UserID,
	}
	if err := s.conversationStore.CreateConversation(conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	slog.Info("conversation created",
		"conversation_id", conversation.ID,
		"manuscript_id", manuscriptID,
		"created_by", viewer.UserID,
	)

	return conversation, nil
}

// PostMessage appends a message to a conversation on behalf of the viewer
func (s *ConversationService) PostMessage(conversationID string, viewer policy.Viewer, privacy models.MessagePrivacy, body string) (*models.Message, error) {
	if privacy != "" && !validPrivacyLevels[privacy] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrivacy, privacy)
	}

	conversation, err := s.conversationStore.GetConversationByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	decisionCtx, err := s.buildContext(conversation.ManuscriptID)
	if err != nil {
		return nil, err
	}

	role := policy.ResolveViewerRole(decisionCtx, viewer)
	if role == policy.RolePublic {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		ConversationID: conversationID,
		AuthorID:       viewer.UserID,
		Privacy:        privacy,
		Body:           body,
	}
	if err := s.conversationStore.CreateMessage(message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}

// buildContext assembles the immutable decision context for one manuscript:
// the manuscript, its author list, its review assignments, and the journal's
// disclosure policy (stored policy first, then the policy file, else simple
// mode with a nil config).
func (s *ConversationService) buildContext(manuscriptID string) (*policy.Context, error) {
	manuscript, err := s.manuscriptStore.GetByID(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manuscript: %w", err)
	}
	if manuscript == nil {
		return nil, ErrManuscriptNotFound
	}

	authorIDs, err := s.manuscriptStore.ListAuthorIDs(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manuscript authors: %w", err)
	}

	assignments, err := s.assignmentSource.ListByManuscript(manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review assignments: %w", err)
	}

	config, err := s.resolveWorkflowConfig(manuscript.JournalID)
	if err != nil {
		return nil, err
	}

	return &policy.Context{
		Manuscript:  *manuscript,
		AuthorIDs:   authorIDs,
		Assignments: assignments,
		Config:      config,
	}, nil
}

func (s *ConversationService) resolveWorkflowConfig(journalID string) (*models.WorkflowConfig, error) {
	config, err := s.journalStore.GetWorkflowConfig(journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow config: %w", err)
	}
	if config != nil {
		return config, nil
	}

	if len(s.filePolicies) > 0 {
		journal, err := s.journalStore.GetByID(journalID)
		if err != nil {
			return nil, fmt.Errorf("failed to get journal: %w", err)
		}
		if journal != nil {
			if fileConfig, ok := s.filePolicies[journal.Slug]; ok {
				return &fileConfig, nil
			}
		}
	}

	return nil, nil
}

// renderMessages applies visibility filtering and identity masking per
// message. Each message is decided independently so one denial never hides
// the rest of the thread.
func (s *ConversationService) renderMessages(decisionCtx *policy.Context, viewer policy.Viewer, messages []models.Message) ([]models.RenderedMessage, error) {
	authorIDs := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for _, msg := range messages {
		if !seen[msg.AuthorID] {
			seen[msg.AuthorID] = true
			authorIDs = append(authorIDs, msg.AuthorID)
		}
	}

	authors, err := s.userStore.GetByIDs(authorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load message authors: %w", err)
	}

	rendered := make([]models.RenderedMessage, 0, len(messages))
	for _, msg := range messages {
		author := authors[msg.AuthorID]
		if author == nil {
			// Deleted account; render a placeholder identity.
			author = &models.User{ID: msg.AuthorID, Username: "unknown", Name: "Unknown User"}
		}
		authorRole := policy.ResolveAuthorRole(decisionCtx, author)

		if !policy.CanSee(decisionCtx, viewer, msg, authorRole) {
			continue
		}

		authorView, err := policy.MaskMessageAuthor(decisionCtx, author, viewer, s.reviewerIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to mask message author: %w", err)
		}

		rendered = append(rendered, models.RenderedMessage{
			Message: msg,
			Author:  authorView,
		})
	}

	return rendered, nil
}
