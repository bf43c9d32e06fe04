package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
)

// maxAttachmentSize caps multipart uploads at 10 MiB.
const maxAttachmentSize = 10 << 20

// ScheduleService defines the interface for maintenance schedule operations
type ScheduleService interface {
	Create(ctx context.Context, input services.CreateScheduleInput) (*entities.MaintenanceSchedule, error)
	GetByID(ctx context.Context, id string) (*entities.MaintenanceSchedule, error)
	Update(ctx context.Context, id string, input services.UpdateScheduleInput) (*entities.MaintenanceSchedule, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context, filter repositories.ScheduleFilter) ([]*entities.MaintenanceSchedule, error)
	AddAttachment(ctx context.Context, scheduleID, fileName, mimeType string, r io.Reader, size int64) (*entities.Attachment, error)
	ListAttachments(ctx context.Context, scheduleID string) ([]entities.Attachment, error)
}

// ScheduleHandler handles maintenance schedule HTTP requests
type ScheduleHandler struct {
	service ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(service ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

type createScheduleRequest struct {
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IssueID   *string `json:"issue_id"`
}

// parseDay accepts either a bare date or a full RFC3339 timestamp; times are
// truncated to days downstream either way.
func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// CreateSchedule handles POST /api/facilities/{code}/schedules
func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	start, err := parseDay(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid start_date (use YYYY-MM-DD)")
		return
	}

	input := services.CreateScheduleInput{
		FacilityCode: code,
		StartDate:    start,
		IssueID:      req.IssueID,
	}
	if req.EndDate != nil {
		end, err := parseDay(*req.EndDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid end_date (use YYYY-MM-DD)")
			return
		}
		input.EndDate = &end
	}

	schedule, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, schedule)
}

// GetSchedule handles GET /api/schedules/{id}
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "schedule ID is required")
		return
	}

	schedule, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// ListSchedules handles GET /api/schedules and GET /api/facilities/{code}/schedules
func (h *ScheduleHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 30)
	filter := repositories.ScheduleFilter{
		FacilityCode: r.PathValue("code"),
		Status:       entities.ScheduleStatus(r.URL.Query().Get("status")),
		Limit:        limit,
		Offset:       offset,
	}

	schedules, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

type updateScheduleRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    *string `json:"status"`
	Remark    *string `json:"remark"`
}

// UpdateSchedule handles PATCH /api/schedules/{id}
func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "schedule ID is required")
		return
	}

	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := services.UpdateScheduleInput{Remark: req.Remark}
	if req.StartDate != nil {
		start, err := parseDay(*req.StartDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid start_date (use YYYY-MM-DD)")
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDay(*req.EndDate)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid end_date (use YYYY-MM-DD)")
			return
		}
		input.EndDate = &end
	}
	if req.Status != nil {
		status := entities.ScheduleStatus(*req.Status)
		input.Status = &status
	}

	schedule, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule handles DELETE /api/schedules/{id}
func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "schedule ID is required")
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddAttachment handles POST /api/schedules/{id}/attachments with a
// multipart form carrying the file under the "file" field.
func (h *ScheduleHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "schedule ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	attachment, err := h.service.AddAttachment(
		r.Context(), id,
		header.Filename,
		header.Header.Get("Content-Type"),
		file, header.Size,
	)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, attachment)
}

// ListAttachments handles GET /api/schedules/{id}/attachments
func (h *ScheduleHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "schedule ID is required")
		return
	}

	attachments, err := h.service.ListAttachments(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"attachments": attachments,
		"count":       len(attachments),
	})
}
