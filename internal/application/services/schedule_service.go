package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// ScheduleService is the maintenance scheduler: it owns the
// single-active-schedule invariants (per facility and per linked issue), the
// date rules, the remark policy, and the terminal completion cascade.
type ScheduleService struct {
	uow         repositories.UnitOfWork
	schedules   repositories.ScheduleRepository
	facilities  repositories.FacilityRepository
	attachments repositories.AttachmentRepository
	sink        providers.AttachmentSink
	sync        *StatusSynchronizer
	bus         providers.EventBus
	metrics     *observability.Metrics

	// now is the clock used for the past-date boundary; replaced in tests.
	now func() time.Time
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	uow repositories.UnitOfWork,
	schedules repositories.ScheduleRepository,
	facilities repositories.FacilityRepository,
	attachments repositories.AttachmentRepository,
	sink providers.AttachmentSink,
	sync *StatusSynchronizer,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *ScheduleService {
	return &ScheduleService{
		uow:         uow,
		schedules:   schedules,
		facilities:  facilities,
		attachments: attachments,
		sink:        sink,
		sync:        sync,
		bus:         bus,
		metrics:     metrics,
		now:         time.Now,
	}
}

// CreateScheduleInput carries the fields needed to plan a repair.
type CreateScheduleInput struct {
	FacilityCode string
	StartDate    time.Time
	EndDate      *time.Time
	IssueID      *string
}

// truncateToDay drops the time-of-day component; the date rules work at day
// granularity.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Create plans a maintenance schedule. At most one active schedule may exist
// per facility and per linked issue; a linked issue is pulled to IN_PROGRESS
// immediately, cascading the facility to UNDER_MAINTENANCE, all in one
// transaction.
func (s *ScheduleService) Create(ctx context.Context, input CreateScheduleInput) (*entities.MaintenanceSchedule, error) {
	today := truncateToDay(s.now())
	start := truncateToDay(input.StartDate)
	if start.Before(today) {
		return nil, apperrors.NewValidationError("start date must not be in the past")
	}

	var end *time.Time
	if input.EndDate != nil {
		e := truncateToDay(*input.EndDate)
		if e.Before(today) {
			return nil, apperrors.NewValidationError("end date must not be in the past")
		}
		if e.Before(start) {
			return nil, apperrors.NewValidationError("end date must not precede start date")
		}
		end = &e
	}

	now := s.now()
	schedule := &entities.MaintenanceSchedule{
		ID:           uuid.New().String(),
		FacilityCode: input.FacilityCode,
		IssueID:      input.IssueID,
		StartDate:    start,
		EndDate:      end,
		Status:       entities.ScheduleStatusRequested,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var events []*entities.MaintenanceEvent
	err := s.uow.Execute(ctx, func(stores repositories.Stores) error {
		facility, err := stores.Facilities.GetByCode(ctx, input.FacilityCode)
		if err != nil {
			return err
		}

		active, err := stores.Schedules.FindActiveByFacility(ctx, input.FacilityCode)
		if err != nil {
			return err
		}
		if active != nil {
			observability.RecordConflict(ctx, s.metrics, "schedule")
			return apperrors.NewConflictError(fmt.Sprintf(
				"facility %s already has schedule %s in status %s",
				input.FacilityCode, active.ID, active.Status))
		}

		var issue *entities.Issue
		if input.IssueID != nil {
			issue, err = stores.Issues.GetByID(ctx, *input.IssueID)
			if err != nil {
				return err
			}
			if issue.FacilityCode != input.FacilityCode {
				return apperrors.NewValidationError(fmt.Sprintf(
					"issue %s belongs to facility %s, not %s",
					issue.ID, issue.FacilityCode, input.FacilityCode))
			}

			activeForIssue, err := stores.Schedules.FindActiveByIssue(ctx, *input.IssueID)
			if err != nil {
				return err
			}
			if activeForIssue != nil {
				observability.RecordConflict(ctx, s.metrics, "schedule")
				return apperrors.NewConflictError(fmt.Sprintf(
					"issue %s already has schedule %s in status %s",
					*input.IssueID, activeForIssue.ID, activeForIssue.Status))
			}
		}

		if err := stores.Schedules.Create(ctx, schedule); err != nil {
			return err
		}

		events = append(events, entities.NewMaintenanceEvent(facility.Code, entities.MaintenanceEventTypeMaintenanceScheduled, map[string]interface{}{
			"schedule_id": schedule.ID,
			"start_date":  schedule.StartDate.Format(time.DateOnly),
		}))

		// A scheduled repair pulls the linked issue into work immediately.
		if issue != nil && issue.Status != entities.IssueStatusInProgress {
			if !issue.Status.CanTransitionTo(entities.IssueStatusInProgress) {
				return apperrors.NewValidationError(fmt.Sprintf(
					"issue %s in status %s cannot enter maintenance", issue.ID, issue.Status))
			}
			issueEvents, err := s.sync.SyncIssueStatus(ctx, stores, issue, entities.IssueStatusInProgress)
			if err != nil {
				return err
			}
			events = append(events, issueEvents...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.bus, events)
	return s.GetByID(ctx, schedule.ID)
}

// UpdateScheduleInput is a patch; nil fields are left unchanged.
type UpdateScheduleInput struct {
	StartDate *time.Time
	EndDate   *time.Time
	Status    *entities.ScheduleStatus
	Remark    *string
}

// Update applies a patch to a schedule. A schedule may not reach PAUSED or
// COMPLETED without a remark, and a transition into COMPLETED closes the
// linked issue and returns the facility to OPERATIONAL in the same
// transaction.
func (s *ScheduleService) Update(ctx context.Context, id string, input UpdateScheduleInput) (*entities.MaintenanceSchedule, error) {
	if input.Status != nil {
		if _, err := entities.ParseScheduleStatus(string(*input.Status)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	var events []*entities.MaintenanceEvent
	err := s.uow.Execute(ctx, func(stores repositories.Stores) error {
		schedule, err := stores.Schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}

		previous := schedule.Status
		resulting := previous
		if input.Status != nil {
			resulting = *input.Status
		}

		if resulting != previous && !previous.CanTransitionTo(resulting) {
			return apperrors.NewValidationError(fmt.Sprintf(
				"illegal schedule transition %s -> %s", previous, resulting))
		}

		remark := schedule.Remark
		if input.Remark != nil {
			remark = input.Remark
		}
		if entities.RemarkRequiredAt(resulting) && (remark == nil || strings.TrimSpace(*remark) == "") {
			return apperrors.NewValidationError(fmt.Sprintf(
				"a remark is required to move a schedule to %s", resulting))
		}

		today := truncateToDay(s.now())
		if input.StartDate != nil {
			start := truncateToDay(*input.StartDate)
			if start.Before(today) {
				return apperrors.NewValidationError("start date must not be in the past")
			}
			schedule.StartDate = start
		}
		if input.EndDate != nil {
			end := truncateToDay(*input.EndDate)
			if end.Before(today) {
				return apperrors.NewValidationError("end date must not be in the past")
			}
			schedule.EndDate = &end
		}
		if schedule.EndDate != nil && schedule.EndDate.Before(schedule.StartDate) {
			return apperrors.NewValidationError("end date must not precede start date")
		}

		schedule.Remark = remark
		schedule.Status = resulting
		if err := stores.Schedules.Update(ctx, schedule); err != nil {
			return err
		}

		if previous != entities.ScheduleStatusCompleted && resulting == entities.ScheduleStatusCompleted {
			completionEvents, err := s.complete(ctx, stores, schedule)
			if err != nil {
				return err
			}
			events = append(events, completionEvents...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.bus, events)
	return s.GetByID(ctx, id)
}

// complete runs the terminal cascade: close the linked issue (if any) and
// return the facility to OPERATIONAL. A completed repair always leaves the
// facility serviceable, linked issue or not.
func (s *ScheduleService) complete(ctx context.Context, stores repositories.Stores, schedule *entities.MaintenanceSchedule) ([]*entities.MaintenanceEvent, error) {
	var events []*entities.MaintenanceEvent

	if schedule.IssueID != nil {
		issue, err := stores.Issues.GetByID(ctx, *schedule.IssueID)
		if err != nil {
			return nil, err
		}
		if issue.Status != entities.IssueStatusClosed {
			issue.ResolutionNotes = schedule.Remark
			previous := issue.Status
			issue.Status = entities.IssueStatusClosed
			if err := stores.Issues.Update(ctx, issue); err != nil {
				return nil, err
			}
			events = append(events, entities.NewMaintenanceEvent(issue.FacilityCode, entities.MaintenanceEventTypeIssueStatusChanged, map[string]interface{}{
				"issue_id":        issue.ID,
				"status":          string(entities.IssueStatusClosed),
				"previous_status": string(previous),
			}))
		}
	}

	cascade, err := s.sync.Apply(ctx, stores.Facilities, schedule.FacilityCode, TriggerScheduleCompleted)
	if err != nil {
		return nil, err
	}
	if cascade != nil {
		events = append(events, cascade)
	}

	events = append(events, entities.NewMaintenanceEvent(schedule.FacilityCode, entities.MaintenanceEventTypeMaintenanceCompleted, map[string]interface{}{
		"schedule_id": schedule.ID,
	}))
	return events, nil
}

// Remove deletes a schedule and its attachment records. Only schedules still
// in REQUESTED may be deleted.
func (s *ScheduleService) Remove(ctx context.Context, id string) error {
	return s.uow.Execute(ctx, func(stores repositories.Stores) error {
		schedule, err := stores.Schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if schedule.Status != entities.ScheduleStatusRequested {
			return apperrors.NewDomainRuleError(fmt.Sprintf(
				"only schedules in %s state may be deleted, schedule %s is %s",
				entities.ScheduleStatusRequested, id, schedule.Status))
		}
		if err := stores.Attachments.DeleteBySchedule(ctx, id); err != nil {
			return err
		}
		return stores.Schedules.Delete(ctx, id)
	})
}

// AddAttachment stores the file via the attachment sink and records it
// against the schedule.
func (s *ScheduleService) AddAttachment(ctx context.Context, scheduleID, fileName, mimeType string, r io.Reader, size int64) (*entities.Attachment, error) {
	if s.sink == nil {
		return nil, apperrors.NewExternalError("attachment storage is not configured", nil)
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, apperrors.NewValidationError("file name is required")
	}

	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}

	stored, err := s.sink.Store(ctx, scheduleID, fileName, mimeType, r, size)
	if err != nil {
		return nil, err
	}

	attachment := &entities.Attachment{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		FileName:   stored.FileName,
		URL:        stored.URL,
		Size:       stored.Size,
		MimeType:   stored.MimeType,
		CreatedAt:  s.now(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// GetByID returns a schedule with its facility and attachments populated.
func (s *ScheduleService) GetByID(ctx context.Context, id string) (*entities.MaintenanceSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility, err := s.facilities.GetByCode(ctx, schedule.FacilityCode); err == nil {
		schedule.Facility = facility
	}
	if attachments, err := s.attachments.ListBySchedule(ctx, id); err == nil {
		schedule.Attachments = attachments
	}
	return schedule, nil
}

// ListAttachments returns the attachments recorded for a schedule.
func (s *ScheduleService) ListAttachments(ctx context.Context, scheduleID string) ([]entities.Attachment, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.attachments.ListBySchedule(ctx, scheduleID)
}

// List returns schedules matching the filter.
func (s *ScheduleService) List(ctx context.Context, filter repositories.ScheduleFilter) ([]*entities.MaintenanceSchedule, error) {
	return s.schedules.List(ctx, filter)
}
