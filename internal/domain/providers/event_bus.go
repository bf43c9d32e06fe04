package providers

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// maintenance events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.MaintenanceEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.MaintenanceEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelMaintenanceUpdates is the channel for all maintenance updates
	EventChannelMaintenanceUpdates = "maintenance:updates"

	// EventChannelFacilityPrefix is the prefix for facility-specific channels
	EventChannelFacilityPrefix = "facility:"
)

// GetFacilityChannel returns the channel name for a specific facility
func GetFacilityChannel(facilityCode string) string {
	return EventChannelFacilityPrefix + facilityCode
}
