package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"peerdesk/internal/middleware"
	"peerdesk/internal/models"
	"peerdesk/internal/policy"
	"peerdesk/internal/repository"
)

// AdminHandler exposes operational hooks: reviewer index invalidation and
// the audit trail
type AdminHandler struct {
	reviewerIndex *policy.ReviewerIndex
	auditRepo     *repository.AuditRepository
	auditMw       *middleware.AuditMiddleware
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(reviewerIndex *policy.ReviewerIndex, auditRepo *repository.AuditRepository, auditMw *middleware.AuditMiddleware) *AdminHandler {
	return &AdminHandler{
		reviewerIndex: reviewerIndex,
		auditRepo:     auditRepo,
		auditMw:       auditMw,
	}
}

// InvalidateIndexRequest represents an index invalidation request. Without a
// manuscript ID the whole cache is dropped.
type InvalidateIndexRequest struct {
	ManuscriptID string `json:"manuscript_id"`
}

// InvalidateReviewerIndex drops cached reviewer ordinals so the next read
// reloads them from assignment order
func (h *AdminHandler) InvalidateReviewerIndex(w http.ResponseWriter, r *http.Request) {
	var req InvalidateIndexRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.ManuscriptID != "" {
		h.reviewerIndex.Invalidate(req.ManuscriptID)
	} else {
		h.reviewerIndex.InvalidateAll()
	}

	userID, _ := middleware.GetUserID(r)
	scope := req.ManuscriptID
	if scope == "" {
		scope = "all"
	}
	_ = h.auditMw.LogAction(&userID, "reviewer_index.invalidate", "reviewer_index",
		"Reviewer index invalidated: "+scope, getIP(r), r.UserAgent())

	slog.Info("reviewer index invalidated", "scope", scope, "user_id", userID)

	respondWithJSON(w, http.StatusOK, map[string]string{"invalidated": scope})
}

// ListAuditLogs returns the most recent audit entries
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.auditRepo.ListRecent(100)
	if err != nil {
		slog.Error("Failed to list audit logs", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	respondWithJSON(w, http.StatusOK, logs)
}
