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

func TestFacilityService_Create(t *testing.T) {
	t.Run("new facilities start active", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		facilities.On("Create", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool {
			return f.Status == entities.FacilityStatusActive && f.Kind == entities.FacilityKindToilet
		})).Return(nil)

		facility, err := service.Create(context.Background(), services.CreateFacilityInput{
			Code: "WC-001",
			Kind: entities.FacilityKindToilet,
			Name: "Central Station Toilets",
		})

		assert.NoError(t, err)
		assert.Equal(t, entities.FacilityStatusActive, facility.Status)
		facilities.AssertExpectations(t)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		_, err := service.Create(context.Background(), services.CreateFacilityInput{
			Code: "POOL-001",
			Kind: "SWIMMING_POOL",
			Name: "City Pool",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		facilities.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects missing code", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		_, err := service.Create(context.Background(), services.CreateFacilityInput{
			Kind: entities.FacilityKindPark,
			Name: "Nameless Park",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestFacilityService_Update(t *testing.T) {
	t.Run("edits descriptive fields without touching status", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		facility := &entities.Facility{
			Code:   "PARK-001",
			Kind:   entities.FacilityKindPark,
			Name:   "Riverside Park",
			Status: entities.FacilityStatusUnderMaintenance,
		}
		facilities.On("GetByCode", mock.Anything, "PARK-001").Return(facility, nil)
		facilities.On("Update", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool {
			return f.Name == "Riverbank Park" && f.Status == entities.FacilityStatusUnderMaintenance
		})).Return(nil)

		name := "Riverbank Park"
		updated, err := service.Update(context.Background(), "PARK-001", services.UpdateFacilityInput{
			Name: &name,
		})

		assert.NoError(t, err)
		assert.Equal(t, entities.FacilityStatusUnderMaintenance, updated.Status)
		facilities.AssertExpectations(t)
	})
}

func TestFacilityService_OverrideStatus(t *testing.T) {
	t.Run("sets status directly", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		facility := &entities.Facility{Code: "PARK-001", Status: entities.FacilityStatusFaultDamaged}
		facilities.On("GetByCode", mock.Anything, "PARK-001").Return(facility, nil)
		facilities.On("Update", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool {
			return f.Status == entities.FacilityStatusOperational
		})).Return(nil)

		updated, err := service.OverrideStatus(context.Background(), "PARK-001", entities.FacilityStatusOperational)

		assert.NoError(t, err)
		assert.Equal(t, entities.FacilityStatusOperational, updated.Status)
		facilities.AssertExpectations(t)
	})

	t.Run("is a no-op when status already matches", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		facility := &entities.Facility{Code: "PARK-001", Status: entities.FacilityStatusOperational}
		facilities.On("GetByCode", mock.Anything, "PARK-001").Return(facility, nil)

		_, err := service.OverrideStatus(context.Background(), "PARK-001", entities.FacilityStatusOperational)

		assert.NoError(t, err)
		facilities.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		_, err := service.OverrideStatus(context.Background(), "PARK-001", "BROKEN")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestFacilityService_ListByKind(t *testing.T) {
	t.Run("scopes listing to one kind", func(t *testing.T) {
		facilities := new(MockFacilityRepository)
		service := services.NewFacilityService(facilities, nil)

		facilities.On("List", mock.Anything, mock.MatchedBy(func(f repositories.FacilityFilter) bool {
			return f.Kind == entities.FacilityKindPark
		})).Return([]*entities.Facility{{Code: "PARK-001"}}, nil)

		result, err := service.ListByKind(context.Background(), entities.FacilityKindPark, repositories.FacilityFilter{})

		assert.NoError(t, err)
		assert.Len(t, result, 1)
		facilities.AssertExpectations(t)
	})
}
