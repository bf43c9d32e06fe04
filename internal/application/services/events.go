package services

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
)

// publishEvents fans events out to the shared updates channel and the
// per-facility channel. Events are only published after the enclosing
// transaction has committed; publish failures are logged, never surfaced —
// the mutation already happened.
func publishEvents(ctx context.Context, bus providers.EventBus, events []*entities.MaintenanceEvent) {
	if bus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)
	for _, event := range events {
		for _, channel := range []string{
			providers.EventChannelMaintenanceUpdates,
			providers.GetFacilityChannel(event.FacilityCode),
		} {
			if err := bus.Publish(ctx, channel, event); err != nil {
				logger.Warn().Err(err).
					Str("channel", channel).
					Str("event_type", string(event.EventType)).
					Msg("failed to publish maintenance event")
			}
		}
	}
}
