package services

import (
	"context"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
)

// CascadeTrigger names an issue/schedule transition that carries a
// facility-side effect.
type CascadeTrigger string

const (
	TriggerIssueReported     CascadeTrigger = "issue_reported"
	TriggerIssueInProgress   CascadeTrigger = "issue_in_progress"
	TriggerIssueResolved     CascadeTrigger = "issue_resolved"
	TriggerScheduleCompleted CascadeTrigger = "schedule_completed"
)

// facilityStatusByTrigger is the whole cascade policy. No other issue or
// schedule status carries a facility-side effect.
var facilityStatusByTrigger = map[CascadeTrigger]entities.FacilityStatus{
	TriggerIssueReported:     entities.FacilityStatusFaultDamaged,
	TriggerIssueInProgress:   entities.FacilityStatusUnderMaintenance,
	TriggerIssueResolved:     entities.FacilityStatusOperational,
	TriggerScheduleCompleted: entities.FacilityStatusOperational,
}

// FacilityStatusFor returns the facility status a trigger maps to.
func FacilityStatusFor(trigger CascadeTrigger) (entities.FacilityStatus, bool) {
	status, ok := facilityStatusByTrigger[trigger]
	return status, ok
}

// TriggerForIssueStatus maps an issue status transition to its cascade
// trigger. REPORTED is handled at creation time; CLOSED has no facility-side
// effect.
func TriggerForIssueStatus(status entities.IssueStatus) (CascadeTrigger, bool) {
	switch status {
	case entities.IssueStatusInProgress:
		return TriggerIssueInProgress, true
	case entities.IssueStatusResolved:
		return TriggerIssueResolved, true
	}
	return "", false
}

// StatusSynchronizer applies the shared cascade policy. It is the single
// owner of derived facility status: both the issue tracker and the
// maintenance scheduler route their facility updates through it, for every
// facility kind.
type StatusSynchronizer struct {
	metrics *observability.Metrics
}

// NewStatusSynchronizer creates a new status synchronizer
func NewStatusSynchronizer(metrics *observability.Metrics) *StatusSynchronizer {
	return &StatusSynchronizer{metrics: metrics}
}

// Apply cascades a trigger onto the facility, using the transaction-scoped
// facility store. Re-applying a trigger whose target status the facility
// already holds is a no-op and returns no event.
func (s *StatusSynchronizer) Apply(ctx context.Context, facilities repositories.FacilityRepository, facilityCode string, trigger CascadeTrigger) (*entities.MaintenanceEvent, error) {
	target, ok := FacilityStatusFor(trigger)
	if !ok {
		return nil, nil
	}

	facility, err := facilities.GetByCode(ctx, facilityCode)
	if err != nil {
		return nil, err
	}

	if facility.Status == target {
		return nil, nil
	}

	previous := facility.Status
	facility.Status = target
	if err := facilities.Update(ctx, facility); err != nil {
		return nil, err
	}

	observability.RecordCascade(ctx, s.metrics, string(trigger))

	return entities.NewMaintenanceEvent(facilityCode, entities.MaintenanceEventTypeFacilityStatusChanged, map[string]interface{}{
		"status":          string(target),
		"previous_status": string(previous),
		"trigger":         string(trigger),
	}), nil
}

// SyncIssueStatus transitions an issue and cascades the matching facility
// status in the same transaction. The scheduler uses it when an issue is
// pulled into maintenance, the tracker when a caller moves an issue directly;
// both go through here so the cascade policy lives in exactly one place.
func (s *StatusSynchronizer) SyncIssueStatus(ctx context.Context, stores repositories.Stores, issue *entities.Issue, next entities.IssueStatus) ([]*entities.MaintenanceEvent, error) {
	previous := issue.Status
	issue.Status = next
	if err := stores.Issues.Update(ctx, issue); err != nil {
		return nil, err
	}

	events := []*entities.MaintenanceEvent{
		entities.NewMaintenanceEvent(issue.FacilityCode, entities.MaintenanceEventTypeIssueStatusChanged, map[string]interface{}{
			"issue_id":        issue.ID,
			"status":          string(next),
			"previous_status": string(previous),
		}),
	}

	if trigger, ok := TriggerForIssueStatus(next); ok {
		event, err := s.Apply(ctx, stores.Facilities, issue.FacilityCode, trigger)
		if err != nil {
			return nil, err
		}
		if event != nil {
			events = append(events, event)
		}
	}

	return events, nil
}
