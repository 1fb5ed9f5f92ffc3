package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"peerdesk/internal/middleware"
	"peerdesk/internal/models"
	"peerdesk/internal/service"
	"peerdesk/pkg/validator"
)

// ManuscriptHandler handles manuscript lifecycle requests
type ManuscriptHandler struct {
	manuscriptService *service.ManuscriptService
}

// NewManuscriptHandler creates a new manuscript handler
func NewManuscriptHandler(manuscriptService *service.ManuscriptService) *ManuscriptHandler {
	return &ManuscriptHandler{manuscriptService: manuscriptService}
}

// SubmitRequest represents a manuscript submission
type SubmitRequest struct {
	JournalID string `json:"journal_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
}

// TransitionRequest represents a workflow phase change
type TransitionRequest struct {
	Phase models.WorkflowPhase `json:"phase" validate:"required"`
}

// AddAuthorRequest represents a co-author addition
type AddAuthorRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Submit creates a new manuscript for the authenticated user
func (h *ManuscriptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	manuscript, err := h.manuscriptService.Submit(req.JournalID, req.Title, userID)
	if err != nil {
		if errors.Is(err, service.ErrJournalNotFound) {
			respondWithError(w, http.StatusNotFound, "Journal not found")
			return
		}
		slog.Error("Failed to submit manuscript", "journal_id", req.JournalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to submit manuscript")
		return
	}

	respondWithJSON(w, http.StatusCreated, manuscript)
}

// Get retrieves a manuscript
func (h *ManuscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	manuscript, err := h.manuscriptService.GetByID(manuscriptID)
	if err != nil {
		if errors.Is(err, service.ErrManuscriptNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to get manuscript", "manuscript_id", manuscriptID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get manuscript")
		return
	}

	respondWithJSON(w, http.StatusOK, manuscript)
}

// Transition advances a manuscript's workflow phase
func (h *ManuscriptHandler) Transition(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	manuscript, err := h.manuscriptService.Transition(manuscriptID, req.Phase)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrManuscriptNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		case errors.Is(err, service.ErrInvalidPhaseTransition):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("Failed to transition manuscript", "manuscript_id", manuscriptID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to transition manuscript")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, manuscript)
}

// AddAuthor appends a co-author to a manuscript
func (h *ManuscriptHandler) AddAuthor(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	var req AddAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.manuscriptService.AddAuthor(manuscriptID, req.UserID); err != nil {
		if errors.Is(err, service.ErrManuscriptNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to add author", "manuscript_id", manuscriptID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to add author")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByJournal lists a journal's manuscripts
func (h *ManuscriptHandler) ListByJournal(w http.ResponseWriter, r *http.Request) {
	journalID := r.PathValue("id")

	manuscripts, err := h.manuscriptService.ListByJournal(journalID)
	if err != nil {
		slog.Error("Failed to list manuscripts", "journal_id", journalID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list manuscripts")
		return
	}
	if manuscripts == nil {
		manuscripts = []models.Manuscript{}
	}

	respondWithJSON(w, http.StatusOK, manuscripts)
}
