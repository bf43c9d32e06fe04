package repositories

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
)

// IssueRepository defines the interface for issue data operations
type IssueRepository interface {
	// Create creates a new issue
	Create(ctx context.Context, issue *entities.Issue) error

	// GetByID retrieves an issue by ID
	GetByID(ctx context.Context, id string) (*entities.Issue, error)

	// Update updates an issue
	Update(ctx context.Context, issue *entities.Issue) error

	// Delete deletes an issue
	Delete(ctx context.Context, id string) error

	// FindActiveByFacility returns the facility's issue in REPORTED or
	// IN_PROGRESS, or nil if there is none.
	FindActiveByFacility(ctx context.Context, facilityCode string) (*entities.Issue, error)

	// List retrieves issues with filters
	List(ctx context.Context, filter IssueFilter) ([]*entities.Issue, error)
}

// IssueFilter defines filters for listing issues
type IssueFilter struct {
	FacilityCode string
	Status       entities.IssueStatus
	Severity     entities.IssueSeverity
	Limit        int
	Offset       int
}
