package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/providers"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// IssueService is the issue tracker: it owns the single-open-issue invariant
// and routes every facility-side effect through the status synchronizer.
type IssueService struct {
	uow        repositories.UnitOfWork
	issues     repositories.IssueRepository
	facilities repositories.FacilityRepository
	sync       *StatusSynchronizer
	bus        providers.EventBus
	metrics    *observability.Metrics
}

// NewIssueService creates a new issue service
func NewIssueService(
	uow repositories.UnitOfWork,
	issues repositories.IssueRepository,
	facilities repositories.FacilityRepository,
	sync *StatusSynchronizer,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *IssueService {
	return &IssueService{
		uow:        uow,
		issues:     issues,
		facilities: facilities,
		sync:       sync,
		bus:        bus,
		metrics:    metrics,
	}
}

// CreateIssueInput carries the fields needed to report a new issue.
type CreateIssueInput struct {
	FacilityCode string
	Description  string
	Severity     entities.IssueSeverity
	ReportedBy   string
}

// Create reports a new issue against a facility. The facility must exist and
// must not already have an open issue; on success the facility is cascaded to
// FAULT_DAMAGED in the same transaction.
func (s *IssueService) Create(ctx context.Context, input CreateIssueInput) (*entities.Issue, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required")
	}
	if _, err := entities.ParseIssueSeverity(string(input.Severity)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if strings.TrimSpace(input.ReportedBy) == "" {
		return nil, apperrors.NewValidationError("reporter id is required")
	}

	now := time.Now()
	issue := &entities.Issue{
		ID:           uuid.New().String(),
		FacilityCode: input.FacilityCode,
		Description:  input.Description,
		Severity:     input.Severity,
		Status:       entities.IssueStatusReported,
		ReportedBy:   input.ReportedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var events []*entities.MaintenanceEvent
	err := s.uow.Execute(ctx, func(stores repositories.Stores) error {
		facility, err := stores.Facilities.GetByCode(ctx, input.FacilityCode)
		if err != nil {
			return err
		}

		existing, err := stores.Issues.FindActiveByFacility(ctx, input.FacilityCode)
		if err != nil {
			return err
		}
		if existing != nil {
			observability.RecordConflict(ctx, s.metrics, "issue")
			return apperrors.NewConflictError(fmt.Sprintf(
				"facility %s already has issue %s in status %s",
				input.FacilityCode, existing.ID, existing.Status))
		}

		if err := stores.Issues.Create(ctx, issue); err != nil {
			return err
		}

		events = append(events, entities.NewMaintenanceEvent(facility.Code, entities.MaintenanceEventTypeIssueReported, map[string]interface{}{
			"issue_id": issue.ID,
			"severity": string(issue.Severity),
		}))

		cascade, err := s.sync.Apply(ctx, stores.Facilities, facility.Code, TriggerIssueReported)
		if err != nil {
			return err
		}
		if cascade != nil {
			events = append(events, cascade)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return s.GetByID(ctx, issue.ID)
}

// UpdateIssueInput carries a status transition with optional field updates.
type UpdateIssueInput struct {
	Status          entities.IssueStatus
	ResolutionNotes *string
	Severity        *entities.IssueSeverity
}

// UpdateStatus transitions an issue. Transitions must follow the issue graph;
// IN_PROGRESS and RESOLVED cascade onto the facility, REPORTED and CLOSED do
// not.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, input UpdateIssueInput) (*entities.Issue, error) {
	if _, err := entities.ParseIssueStatus(string(input.Status)); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if input.Severity != nil {
		if _, err := entities.ParseIssueSeverity(string(*input.Severity)); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	var events []*entities.MaintenanceEvent
	err := s.uow.Execute(ctx, func(stores repositories.Stores) error {
		issue, err := stores.Issues.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.Status != issue.Status && !issue.Status.CanTransitionTo(input.Status) {
			return apperrors.NewValidationError(fmt.Sprintf(
				"illegal issue transition %s -> %s", issue.Status, input.Status))
		}

		notes := issue.ResolutionNotes
		if input.ResolutionNotes != nil {
			notes = input.ResolutionNotes
		}
		if entities.ResolutionNotesRequiredAt(input.Status) && (notes == nil || strings.TrimSpace(*notes) == "") {
			return apperrors.NewValidationError(fmt.Sprintf(
				"resolution notes are required to move an issue to %s", input.Status))
		}

		issue.ResolutionNotes = notes
		if input.Severity != nil {
			issue.Severity = *input.Severity
		}

		if input.Status == issue.Status {
			// No transition; persist the field updates only.
			return stores.Issues.Update(ctx, issue)
		}

		events, err = s.sync.SyncIssueStatus(ctx, stores, issue, input.Status)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	return s.GetByID(ctx, id)
}

// Remove deletes an issue. Only issues still in REPORTED may be deleted.
func (s *IssueService) Remove(ctx context.Context, id string) error {
	return s.uow.Execute(ctx, func(stores repositories.Stores) error {
		issue, err := stores.Issues.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if issue.Status != entities.IssueStatusReported {
			return apperrors.NewDomainRuleError(fmt.Sprintf(
				"only issues in %s state may be deleted, issue %s is %s",
				entities.IssueStatusReported, id, issue.Status))
		}
		return stores.Issues.Delete(ctx, id)
	})
}

// GetByID returns an issue with its facility relation populated.
func (s *IssueService) GetByID(ctx context.Context, id string) (*entities.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facility, err := s.facilities.GetByCode(ctx, issue.FacilityCode); err == nil {
		issue.Facility = facility
	}
	return issue, nil
}

// List returns issues matching the filter.
func (s *IssueService) List(ctx context.Context, filter repositories.IssueFilter) ([]*entities.Issue, error) {
	return s.issues.List(ctx, filter)
}

func (s *IssueService) publish(ctx context.Context, events []*entities.MaintenanceEvent) {
	publishEvents(ctx, s.bus, events)
}
