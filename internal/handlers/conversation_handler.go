package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"peerdesk/internal/middleware"
	"peerdesk/internal/models"
	"peerdesk/internal/policy"
	"peerdesk/internal/service"
	"peerdesk/pkg/validator"
)

// ConversationHandler serves manuscript discussions rendered for the viewer.
// All read endpoints accept anonymous viewers; the service decides what they
// may see.
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// CreateConversationRequest represents a new discussion thread
type CreateConversationRequest struct {
	Subject string `json:"subject" validate:"required"`
}

// PostMessageRequest represents a new message
type PostMessageRequest struct {
	Privacy models.MessagePrivacy `json:"privacy"`
	Body    string                `json:"body" validate:"required"`
}

// viewerFromRequest builds the policy viewer from the (optional) auth context
func viewerFromRequest(r *http.Request) policy.Viewer {
	viewer := policy.Viewer{}
	if userID, ok := middleware.GetUserID(r); ok {
		viewer.UserID = userID
	}
	if role, ok := middleware.GetGlobalRole(r); ok {
		viewer.GlobalRole = &role
	}
	return viewer
}

// GetConversation returns one conversation filtered and masked for the viewer
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	result, err := h.conversationService.GetConversationForViewer(conversationID, viewerFromRequest(r))
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) || errors.Is(err, service.ErrManuscriptNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to render conversation", "conversation_id", conversationID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetManuscriptDiscussion returns all conversations on a manuscript for the viewer
func (h *ConversationHandler) GetManuscriptDiscussion(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	result, err := h.conversationService.GetManuscriptDiscussion(manuscriptID, viewerFromRequest(r))
	if err != nil {
		if errors.Is(err, service.ErrManuscriptNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to render discussion", "manuscript_id", manuscriptID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load discussion")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CreateConversation opens a new discussion thread on a manuscript
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	conversation, err := h.conversationService.CreateConversation(manuscriptID, req.Subject, viewerFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrManuscriptNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		case errors.Is(err, service.ErrNotParticipant):
			respondWithError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		default:
			slog.Error("Failed to create conversation", "manuscript_id", manuscriptID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to create conversation")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, conversation)
}

// PostMessage appends a message to a conversation
func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.conversationService.PostMessage(conversationID, viewerFromRequest(r), req.Privacy, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrManuscriptNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		case errors.Is(err, service.ErrNotParticipant):
			respondWithError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		case errors.Is(err, service.ErrInvalidPrivacy):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Failed to post message", "conversation_id", conversationID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to post message")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, message)
}
