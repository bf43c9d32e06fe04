package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
)

// FacilityService defines the interface for facility operations
type FacilityService interface {
	Create(ctx context.Context, input services.CreateFacilityInput) (*entities.Facility, error)
	GetByCode(ctx context.Context, code string) (*entities.Facility, error)
	Update(ctx context.Context, code string, input services.UpdateFacilityInput) (*entities.Facility, error)
	OverrideStatus(ctx context.Context, code string, status entities.FacilityStatus) (*entities.Facility, error)
	List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error)
	ListByKind(ctx context.Context, kind entities.FacilityKind, filter repositories.FacilityFilter) ([]*entities.Facility, error)
	Delete(ctx context.Context, code string) error
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	service FacilityService
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(service FacilityService) *FacilityHandler {
	return &FacilityHandler{service: service}
}

type createFacilityRequest struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// CreateFacility handles POST /api/facilities
func (h *FacilityHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req createFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	facility, err := h.service.Create(r.Context(), services.CreateFacilityInput{
		Code:     req.Code,
		Kind:     entities.FacilityKind(req.Kind),
		Name:     req.Name,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, facility)
}

// GetFacility handles GET /api/facilities/{code}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	facility, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 30)
	filter := repositories.FacilityFilter{
		Kind:   entities.FacilityKind(r.URL.Query().Get("kind")),
		Status: entities.FacilityStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}

	facilities, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// ListByKind returns a handler for the per-kind listing routes, e.g.
// GET /api/parks.
func (h *FacilityHandler) ListByKind(kind entities.FacilityKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parsePagination(r, 30)
		filter := repositories.FacilityFilter{
			Status: entities.FacilityStatus(r.URL.Query().Get("status")),
			Limit:  limit,
			Offset: offset,
		}

		facilities, err := h.service.ListByKind(r.Context(), kind, filter)
		if err != nil {
			respondWithAppError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"facilities": facilities,
			"count":      len(facilities),
		})
	}
}

type updateFacilityRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

// UpdateFacility handles PATCH /api/facilities/{code}
func (h *FacilityHandler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	var req updateFacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	facility, err := h.service.Update(r.Context(), code, services.UpdateFacilityInput{
		Name:     req.Name,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

type overrideStatusRequest struct {
	Status string `json:"status"`
}

// OverrideStatus handles PUT /api/facilities/{code}/status
func (h *FacilityHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	var req overrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	facility, err := h.service.OverrideStatus(r.Context(), code, entities.FacilityStatus(req.Status))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// DeleteFacility handles DELETE /api/facilities/{code}
func (h *FacilityHandler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "facility code is required")
		return
	}

	if err := h.service.Delete(r.Context(), code); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
