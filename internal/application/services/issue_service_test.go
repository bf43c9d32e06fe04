package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

func newIssueFixture() (*MockIssueRepository, *MockFacilityRepository, *services.IssueService) {
	issues := new(MockIssueRepository)
	facilities := new(MockFacilityRepository)
	uow := &fakeUnitOfWork{stores: repositories.Stores{
		Facilities: facilities,
		Issues:     issues,
	}}
	sync := services.NewStatusSynchronizer(nil)
	service := services.NewIssueService(uow, issues, facilities, sync, nil, nil)
	return issues, facilities, service
}

func TestIssueService_Create(t *testing.T) {
	t.Run("reports issue and cascades facility to fault-damaged", func(t *testing.T) {
		issues, facilities, service := newIssueFixture()

		facility := &entities.Facility{Code: "PARK-001", Kind: entities.FacilityKindPark, Status: entities.FacilityStatusActive}
		facilities.On("GetByCode", mock.Anything, "PARK-001").Return(facility, nil)
		issues.On("FindActiveByFacility", mock.Anything, "PARK-001").Return(nil, nil)
		issues.On("Create", mock.Anything, mock.MatchedBy(func(i *entities.Issue) bool {
			return i.Status == entities.IssueStatusReported && i.FacilityCode == "PARK-001"
		})).Return(nil)
		facilities.On("Update", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool {
			return f.Status == entities.FacilityStatusFaultDamaged
		})).Return(nil)
		issues.On("GetByID", mock.Anything, mock.Anything).Return(&entities.Issue{
			ID:           "issue-1",
			FacilityCode: "PARK-001",
			Status:       entities.IssueStatusReported,
		}, nil)

		issue, err := service.Create(context.Background(), services.CreateIssueInput{
			FacilityCode: "PARK-001",
			Description:  "broken swing",
			Severity:     entities.IssueSeverityHigh,
			ReportedBy:   "citizen-42",
		})

		assert.NoError(t, err)
		assert.Equal(t, entities.IssueStatusReported, issue.Status)
		issues.AssertExpectations(t)
		facilities.AssertExpectations(t)
	})

	t.Run("rejects second open issue with conflict naming the first", func(t *testing.T) {
		issues, facilities, service := newIssueFixture()

		facility := &entities.Facility{Code: "PARK-001", Status: entities.FacilityStatusFaultDamaged}
		facilities.On("GetByCode", mock.Anything, "PARK-001").Return(facility, nil)
		issues.On("FindActiveByFacility", mock.Anything, "PARK-001").Return(&entities.Issue{
			ID:     "issue-1",
			Status: entities.IssueStatusReported,
		}, nil)

		_, err := service.Create(context.Background(), services.CreateIssueInput{
			FacilityCode: "PARK-001",
			Description:  "another fault",
			Severity:     entities.IssueSeverityLow,
			ReportedBy:   "citizen-43",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		assert.Contains(t, err.Error(), "issue-1")
		issues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing description before any mutation", func(t *testing.T) {
		issues, _, service := newIssueFixture()

		_, err := service.Create(context.Background(), services.CreateIssueInput{
			FacilityCode: "PARK-001",
			Description:  "  ",
			Severity:     entities.IssueSeverityLow,
			ReportedBy:   "citizen-1",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		issues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown severity", func(t *testing.T) {
		_, _, service := newIssueFixture()

		_, err := service.Create(context.Background(), services.CreateIssueInput{
			FacilityCode: "PARK-001",
			Description:  "broken gate",
			Severity:     "URGENT",
			ReportedBy:   "citizen-1",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("propagates facility not found", func(t *testing.T) {
		issues, facilities, service := newIssueFixture()

		facilities.On("GetByCode", mock.Anything, "NOPE-001").
			Return(nil, apperrors.NewNotFoundError("facility with code NOPE-001 not found"))

		_, err := service.Create(context.Background(), services.CreateIssueInput{
			FacilityCode: "NOPE-001",
			Description:  "broken gate",
			Severity:     entities.IssueSeverityLow,
			ReportedBy:   "citizen-1",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		issues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestIssueService_UpdateStatus(t *testing.T) {
	t.Run("resolving an issue returns facility to operational", func(t *testing.T) {
		issues, facilities, service := newIssueFixture()

		issue := &entities.Issue{ID: "issue-1", FacilityCode: "WC-001", Status: entities.IssueStatusInProgress}
		facility := &entities.Facility{Code: "WC-001", Status: entities.FacilityStatusUnderMaintenance}

		issues.On("GetByID", mock.Anything, "issue-1").Return(issue, nil)
		issues.On("Update", mock.Anything, mock.MatchedBy(func(i *entities.Issue) bool {
			return i.Status == entities.IssueStatusResolved
		})).Return(nil)
		facilities.On("GetByCode", mock.Anything, "WC-001").Return(facility, nil)
		facilities.On("Update", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool {
			return f.Status == entities.FacilityStatusOperational
		})).Return(nil)

		updated, err := service.UpdateStatus(context.Background(), "issue-1", services.UpdateIssueInput{
			Status: entities.IssueStatusResolved,
		})

		assert.NoError(t, err)
		assert.Equal(t, entities.IssueStatusResolved, updated.Status)
		issues.AssertExpectations(t)
		facilities.AssertExpectations(t)
	})

	t.Run("rejects transitions the graph does not permit", func(t *testing.T) {
		issues, _, service := newIssueFixture()

		issue := &entities.Issue{ID: "issue-1", FacilityCode: "WC-001", Status: entities.IssueStatusClosed}
		issues.On("GetByID", mock.Anything, "issue-1").Return(issue, nil)

		_, err := service.UpdateStatus(context.Background(), "issue-1", services.UpdateIssueInput{
			Status: entities.IssueStatusInProgress,
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		issues.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("resolution may omit notes", func(t *testing.T) {
		issues, facilities, service := newIssueFixture()

		issue := &entities.Issue{ID: "issue-1", FacilityCode: "WC-001", Status: entities.IssueStatusResolved}
		issues.On("GetByID", mock.Anything, "issue-1").Return(issue, nil)
		issues.On("Update", mock.Anything, mock.Anything).Return(nil)
		facilities.On("GetByCode", mock.Anything, "WC-001").Return(&entities.Facility{Code: "WC-001"}, nil)

		updated, err := service.UpdateStatus(context.Background(), "issue-1", services.UpdateIssueInput{
			Status: entities.IssueStatusClosed,
		})

		assert.NoError(t, err)
		assert.Nil(t, updated.ResolutionNotes)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, _, service := newIssueFixture()

		_, err := service.UpdateStatus(context.Background(), "issue-1", services.UpdateIssueInput{
			Status: "FIXED",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestIssueService_Remove(t *testing.T) {
	t.Run("deletes issue still in reported state", func(t *testing.T) {
		issues, _, service := newIssueFixture()

		issue := &entities.Issue{ID: "issue-1", Status: entities.IssueStatusReported}
		issues.On("GetByID", mock.Anything, "issue-1").Return(issue, nil)
		issues.On("Delete", mock.Anything, "issue-1").Return(nil)

		err := service.Remove(context.Background(), "issue-1")

		assert.NoError(t, err)
		issues.AssertExpectations(t)
	})

	t.Run("refuses to delete issue already being worked", func(t *testing.T) {
		issues, _, service := newIssueFixture()

		issue := &entities.Issue{ID: "issue-1", Status: entities.IssueStatusInProgress}
		issues.On("GetByID", mock.Anything, "issue-1").Return(issue, nil)

		err := service.Remove(context.Background(), "issue-1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDomainRule))
		issues.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
