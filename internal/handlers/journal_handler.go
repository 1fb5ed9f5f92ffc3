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

// JournalHandler handles journal and disclosure policy management
type JournalHandler struct {
	journalService *service.JournalService
	reviewerIndex  *policy.ReviewerIndex
	auditMw        *middleware.AuditMiddleware
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(journalService *service.JournalService, reviewerIndex *policy.ReviewerIndex, auditMw *middleware.AuditMiddleware) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		reviewerIndex:  reviewerIndex,
		auditMw:        auditMw,
	}
}

// CreateJournalRequest represents a new journal
type CreateJournalRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required,slug"`
}

// Create creates a new journal
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	journal, err := h.journalService.Create(req.Name, req.Slug)
	if err != nil {
		slog.Error("Failed to create journal", "slug", req.Slug, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create journal")
		return
	}

	respondWithJSON(w, http.StatusCreated, journal)
}

// GetBySlug retrieves a journal by slug
func (h *JournalHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	journal, err := h.journalService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrJournalNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to get journal", "slug", slug, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get journal")
		return
	}

	respondWithJSON(w, http.StatusOK, journal)
}

// GetWorkflowConfig returns a journal's disclosure policy, or 404 in simple mode
func (h *JournalHandler) GetWorkflowConfig(w http.ResponseWriter, r *http.Request) {
	journalID := r.PathValue("id")

	config, err := h.journalService.GetWorkflowConfig(journalID)
	if err != nil {
		slog.Error("Failed to get workflow config", "journal_id", journalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get workflow config")
		return
	}
	if config == nil {
		respondWithError(w, http.StatusNotFound, "Journal has no workflow policy")
		return
	}

	respondWithJSON(w, http.StatusOK, config)
}

// SetWorkflowConfig stores a journal's disclosure policy. Policy changes can
// alter every visibility decision, so the reviewer index is dropped for all
// manuscripts.
func (h *JournalHandler) SetWorkflowConfig(w http.ResponseWriter, r *http.Request) {
	journalID := r.PathValue("id")

	var config models.WorkflowConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.journalService.SetWorkflowConfig(journalID, &config); err != nil {
		switch {
		case errors.Is(err, service.ErrJournalNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		case errors.Is(err, service.ErrInvalidPolicyKnob):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("Failed to set workflow config", "journal_id", journalID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to set workflow config")
		}
		return
	}

	h.reviewerIndex.InvalidateAll()

	userID, _ := middleware.GetUserID(r)
	_ = h.auditMw.LogAction(&userID, "journal.policy.update", "journals",
		"Workflow policy updated for journal "+journalID, getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusOK, config)
}

// ClearWorkflowConfig reverts a journal to simple mode
func (h *JournalHandler) ClearWorkflowConfig(w http.ResponseWriter, r *http.Request) {
	journalID := r.PathValue("id")

	if err := h.journalService.ClearWorkflowConfig(journalID); err != nil {
		slog.Error("Failed to clear workflow config", "journal_id", journalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to clear workflow config")
		return
	}

	userID, _ := middleware.GetUserID(r)
	_ = h.auditMw.LogAction(&userID, "journal.policy.clear", "journals",
		"Workflow policy cleared for journal "+journalID, getIP(r), r.UserAgent())

	w.WriteHeader(http.StatusNoContent)
}
