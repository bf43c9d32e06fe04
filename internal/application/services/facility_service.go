package services

import (
	"context"
	"strings"
	"time"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// FacilityService manages the facility registry. Facility status is derived
// by the status synchronizer; regular edits here never touch it, only the
// explicit override does.
type FacilityService struct {
	facilities repositories.FacilityRepository
	bus        providers.EventBus
}

// NewFacilityService creates a new facility service
func NewFacilityService(facilities repositories.FacilityRepository, bus providers.EventBus) *FacilityService {
	return &FacilityService{facilities: facilities, bus: bus}
}

// CreateFacilityInput carries the fields needed to register a facility.
type CreateFacilityInput struct {
	Code     string
	Kind     entities.FacilityKind
	Name     string
	Location string
	Notes    string
}

// Create registers a new facility. New facilities start ACTIVE.
func (s *FacilityService) Create(ctx context.Context, input CreateFacilityInput) (*entities.Facility, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, apperrors.NewValidationError("facility code is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("facility name is required")
	}
	if _, err := entities.ParseFacilityKind(string(input.Kind)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	now := time.Now()
	facility := &entities.Facility{
		Code:      input.Code,
		Kind:      input.Kind,
		Name:      input.Name,
		Location:  input.Location,
		Notes:     input.Notes,
		Status:    entities.FacilityStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.facilities.Create(ctx, facility); err != nil {
		return nil, err
	}
	return facility, nil
}

// UpdateFacilityInput is a patch; nil fields are left unchanged. Status is
// deliberately absent: it is owned by the synchronizer and the override.
type UpdateFacilityInput struct {
	Name     *string
	Location *string
	Notes    *string
}

// Update edits a facility's descriptive fields.
func (s *FacilityService) Update(ctx context.Context, code string, input UpdateFacilityInput) (*entities.Facility, error) {
	facility, err := s.facilities.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("facility name is required")
		}
		facility.Name = *input.Name
	}
	if input.Location != nil {
		facility.Location = *input.Location
	}
	if input.Notes != nil {
		facility.Notes = *input.Notes
	}

	if err := s.facilities.Update(ctx, facility); err != nil {
		return nil, err
	}
	return facility, nil
}

// OverrideStatus sets a facility's status directly, bypassing the cascade
// policy. This is the administrative escape hatch; it is logged and published
// like any other status change.
func (s *FacilityService) OverrideStatus(ctx context.Context, code string, status entities.FacilityStatus) (*entities.Facility, error) {
	if _, err := entities.ParseFacilityStatus(string(status)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	facility, err := s.facilities.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if facility.Status == status {
		return facility, nil
	}

	previous := facility.Status
	facility.Status = status
	if err := s.facilities.Update(ctx, facility); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("facility_code", code).
		Str("previous_status", string(previous)).
		Str("status", string(status)).
		Msg("facility status overridden")

	publishEvents(ctx, s.bus, []*entities.MaintenanceEvent{
		entities.NewMaintenanceEvent(code, entities.MaintenanceEventTypeFacilityStatusChanged, map[string]interface{}{
			"status":          string(status),
			"previous_status": string(previous),
			"trigger":         "manual_override",
		}),
	})
	return facility, nil
}

// GetByCode returns a facility by its code.
func (s *FacilityService) GetByCode(ctx context.Context, code string) (*entities.Facility, error) {
	return s.facilities.GetByCode(ctx, code)
}

// List returns facilities matching the filter.
func (s *FacilityService) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	return s.facilities.List(ctx, filter)
}

// ListByKind returns facilities of one kind; it backs the per-kind listing
// routes.
func (s *FacilityService) ListByKind(ctx context.Context, kind entities.FacilityKind, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	if _, err := entities.ParseFacilityKind(string(kind)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	filter.Kind = kind
	return s.facilities.List(ctx, filter)
}

// Delete removes a facility from the registry. Facilities with issues or
// schedules still attached cannot be deleted; the repository surfaces that as
// a domain rule violation.
func (s *FacilityService) Delete(ctx context.Context, code string) error {
	return s.facilities.Delete(ctx, code)
}
