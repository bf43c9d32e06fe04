package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
)

// IssueService defines the interface for issue operations
type IssueService interface {
	Create(ctx context.Context, input services.CreateIssueInput) (*entities.Issue, error)
	GetByID(ctx context.Context, id string) (*entities.Issue, error)
	UpdateStatus(ctx context.Context, id string, input services.UpdateIssueInput) (*entities.Issue, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, filter repositories.IssueFilter) ([]*entities.Issue, error)
}

// IssueHandler handles issue-related HTTP requests
type IssueHandler struct {
	service IssueService
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(service IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

type createIssueRequest struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// CreateIssue handles POST /api/facilities/{code}/issues. The reporter is
// identified by the X-User-ID header.
func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	reportedBy := r.Header.Get("X-User-ID")
	if reportedBy == "" {
		respondWithError(w, http.StatusBadRequest, "X-User-ID header is required")
		return
	}

	var req createIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	issue, err := h.service.Create(r.Context(), services.CreateIssueInput{
		FacilityCode: code,
		Description:  req.Description,
		Severity:     entities.IssueSeverity(req.Severity),
		ReportedBy:   reportedBy,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, issue)
}

// GetIssue handles GET /api/issues/{id}
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "issue ID is required")
		return
	}

	issue, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, issue)
}

// ListIssues handles GET /api/issues and GET /api/facilities/{code}/issues
func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 30)
	filter := repositories.IssueFilter{
		FacilityCode: r.PathValue("code"),
		Status:       entities.IssueStatus(r.URL.Query().Get("status")),
		Severity:     entities.IssueSeverity(r.URL.Query().Get("severity")),
		Limit:        limit,
		Offset:       offset,
	}

	issues, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"issues": issues,
		"count":  len(issues),
	})
}

type updateIssueRequest struct {
	Status          string  `json:"status"`
	ResolutionNotes *string `json:"resolution_notes"`
	Severity        *string `json:"severity"`
}

// UpdateIssueStatus handles PATCH /api/issues/{id}/status
func (h *IssueHandler) UpdateIssueStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "issue ID is required")
		return
	}

	var req updateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := services.UpdateIssueInput{
		Status:          entities.IssueStatus(req.Status),
		ResolutionNotes: req.ResolutionNotes,
	}
	if req.Severity != nil {
		severity := entities.IssueSeverity(*req.Severity)
		input.Severity = &severity
	}

	issue, err := h.service.UpdateStatus(r.Context(), id, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, issue)
}

// DeleteIssue handles DELETE /api/issues/{id}
func (h *IssueHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "issue ID is required")
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
