package repositories

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
)

// ScheduleRepository defines the interface for maintenance schedule data
// operations
type ScheduleRepository interface {
	// Create creates a new schedule
	Create(ctx context.Context, schedule *entities.MaintenanceSchedule) error

	// GetByID retrieves a schedule by ID
	GetByID(ctx context.Context, id string) (*entities.MaintenanceSchedule, error)

	// Update updates a schedule
	Update(ctx context.Context, schedule *entities.MaintenanceSchedule) error

	// Delete deletes a schedule
	Delete(ctx context.Context, id string) error

	// FindActiveByFacility returns the facility's schedule in REQUESTED,
	// STARTED or PAUSED, or nil if there is none.
	FindActiveByFacility(ctx context.Context, facilityCode string) (*entities.MaintenanceSchedule, error)

	// FindActiveByIssue returns the active schedule linked to the issue, or
	// nil if there is none.
	FindActiveByIssue(ctx context.Context, issueID string) (*entities.MaintenanceSchedule, error)

	// List retrieves schedules with filters
	List(ctx context.Context, filter ScheduleFilter) ([]*entities.MaintenanceSchedule, error)
}

// ScheduleFilter defines filters for listing schedules
type ScheduleFilter struct {
	FacilityCode string
	Status       entities.ScheduleStatus
	Limit        int
	Offset       int
}

// AttachmentRepository defines the interface for schedule attachment metadata
type AttachmentRepository interface {
	// Create records an attachment against a schedule
	Create(ctx context.Context, attachment *entities.Attachment) error

	// ListBySchedule returns all attachments recorded for a schedule
	ListBySchedule(ctx context.Context, scheduleID string) ([]entities.Attachment, error)

	// DeleteBySchedule removes all attachment rows for a schedule
	DeleteBySchedule(ctx context.Context, scheduleID string) error
}
