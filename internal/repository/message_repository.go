package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"peerdesk/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

// MessageRepository handles conversation and message database operations
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateConversation creates a new conversation on a manuscript
func (r *MessageRepository) CreateConversation(conversation *models.Conversation) error {
	query := `
		INSERT INTO conversations (id, manuscript_id, subject, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	now := time.Now()
	_, err := r.db.Exec(
		query,
		conversation.ID,
		conversation.ManuscriptID,
		conversation.Subject,
		conversation.CreatedBy,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	return nil
}

// GetConversationByID retrieves a conversation by ID
func (r *MessageRepository) GetConversationByID(id string) (*models.Conversation, error) {
	query := `
		SELECT id, manuscript_id, subject, created_by, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	conversation := &models.Conversation{}
	err := r.db.QueryRow(query, id).Scan(
		&conversation.ID,
		&conversation.ManuscriptID,
		&conversation.Subject,
		&conversation.CreatedBy,
		&conversation.CreatedAt,
		&conversation.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation by ID: %w", err)
	}

	return conversation, nil
}

// ListConversationsByManuscript retrieves all conversations on a manuscript,
// oldest first
func (r *MessageRepository) ListConversationsByManuscript(manuscriptID string) ([]models.Conversation, error) {
	query := `
		SELECT id, manuscript_id, subject, created_by, created_at, updated_at
		FROM conversations
		WHERE manuscript_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, manuscriptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var c models.Conversation
		err := rows.Scan(
			&c.ID,
			&c.ManuscriptID,
			&c.Subject,
			&c.CreatedBy,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return conversations, nil
}

// CreateMessage appends a message to a conversation
func (r *MessageRepository) CreateMessage(message *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, author_id, privacy, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.Privacy == "" {
		message.Privacy = models.PrivacyAuthorVisible
	}
	now := time.Now()
	_, err := r.db.Exec(
		query,
		message.ID,
		message.ConversationID,
		message.AuthorID,
		message.Privacy,
		message.Body,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	message.CreatedAt = now
	message.UpdatedAt = now
	return nil
}

// ListMessagesByConversation retrieves all messages in a conversation in
// chronological order, before any visibility filtering
func (r *MessageRepository) ListMessagesByConversation(conversationID string) ([]models.Message, error) {
	query := `
		SELECT id, conversation_id, author_id, privacy, body, created_at, updated_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&m.AuthorID,
			&m.Privacy,
			&m.Body,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}
