package repositories

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
)

// FacilityRepository defines the interface for facility data operations.
// Facilities are keyed by their stable, user-assigned code.
type FacilityRepository interface {
	// Create creates a new facility
	Create(ctx context.Context, facility *entities.Facility) error

	// GetByCode retrieves a facility by code
	GetByCode(ctx context.Context, code string) (*entities.Facility, error)

	// Update updates a facility
	Update(ctx context.Context, facility *entities.Facility) error

	// Delete deletes a facility. Issues referencing it are kept; facility
	// deletion never cascades.
	Delete(ctx context.Context, code string) error

	// List retrieves facilities with filters
	List(ctx context.Context, filter FacilityFilter) ([]*entities.Facility, error)
}

// FacilityFilter defines filters for listing facilities
type FacilityFilter struct {
	Kind   entities.FacilityKind
	Status entities.FacilityStatus
	Limit  int
	Offset int
}
