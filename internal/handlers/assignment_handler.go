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

// AssignmentHandler handles review assignment management. All endpoints are
// editorial-only; route registration wraps them in the RBAC guard.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	auditMw           *middleware.AuditMiddleware
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService, auditMw *middleware.AuditMiddleware) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		auditMw:           auditMw,
	}
}

// AssignRequest represents a reviewer invitation
type AssignRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
}

// UpdateStatusRequest represents an assignment status change
type UpdateStatusRequest struct {
	Status models.AssignmentStatus `json:"status" validate:"required"`
}

// Assign invites a reviewer to a manuscript
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.assignmentService.Assign(manuscriptID, req.ReviewerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrManuscriptNotFound):
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
		case errors.Is(err, service.ErrAuthorAsReviewer):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("Failed to assign reviewer", "manuscript_id", manuscriptID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to assign reviewer")
		}
		return
	}

	userID, _ := middleware.GetUserID(r)
	_ = h.auditMw.LogAction(&userID, "assignment.create", "review_assignments",
		"Reviewer assigned to manuscript "+manuscriptID, getIP(r), r.UserAgent())

	respondWithJSON(w, http.StatusCreated, assignment)
}

// List returns a manuscript's assignments in assignment order
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	manuscriptID := r.PathValue("id")

	assignments, err := h.assignmentService.ListByManuscript(manuscriptID)
	if err != nil {
		slog.Error("Failed to list assignments", "manuscript_id", manuscriptID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []models.ReviewAssignment{}
	}

	respondWithJSON(w, http.StatusOK, assignments)
}

// UpdateStatus transitions an assignment between lifecycle states
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	switch req.Status {
	case models.AssignmentPending, models.AssignmentAccepted, models.AssignmentDeclined,
		models.AssignmentInProgress, models.AssignmentCompleted:
	default:
		respondWithError(w, http.StatusBadRequest, "Invalid assignment status")
		return
	}

	// Reviewers may update their own assignment; editorial staff any.
	assignment, err := h.assignmentService.GetByID(assignmentID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to get assignment", "assignment_id", assignmentID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update assignment")
		return
	}
	userID, _ := middleware.GetUserID(r)
	_, editorial := middleware.GetGlobalRole(r)
	if userID != assignment.ReviewerID && !editorial {
		respondWithError(w, http.StatusForbidden, ErrMsgPermissionDenied)
		return
	}

	if err := h.assignmentService.UpdateStatus(assignmentID, req.Status); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to update assignment", "assignment_id", assignmentID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update assignment")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

// Remove withdraws a review assignment
func (h *AssignmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("id")

	if err := h.assignmentService.Remove(assignmentID); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			respondWithError(w, http.StatusNotFound, ErrMsgNotFound)
			return
		}
		slog.Error("Failed to remove assignment", "assignment_id", assignmentID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to remove assignment")
		return
	}

	userID, _ := middleware.GetUserID(r)
	_ = h.auditMw.LogAction(&userID, "assignment.delete", "review_assignments",
		"Assignment "+assignmentID+" removed", getIP(r), r.UserAgent())

	w.WriteHeader(http.StatusNoContent)
}
