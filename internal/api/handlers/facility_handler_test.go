package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/civicworks/facilitycare/internal/api/handlers"
	"github.com/civicworks/facilitycare/internal/application/services"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

type MockFacilityService struct {
	mock.Mock
}

func (m *MockFacilityService) Create(ctx context.Context, input services.CreateFacilityInput) (*entities.Facility, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) GetByCode(ctx context.Context, code string) (*entities.Facility, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) Update(ctx context.Context, code string, input services.UpdateFacilityInput) (*entities.Facility, error) {
	args := m.Called(ctx, code, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) OverrideStatus(ctx context.Context, code string, status entities.FacilityStatus) (*entities.Facility, error) {
	args := m.Called(ctx, code, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) ListByKind(ctx context.Context, kind entities.FacilityKind, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	args := m.Called(ctx, kind, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Facility), args.Error(1)
}

func (m *MockFacilityService) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func TestFacilityHandler_CreateFacility(t *testing.T) {
	t.Run("successfully registers facility", func(t *testing.T) {
		mockService := new(MockFacilityService)
		handler := handlers.NewFacilityHandler(mockService)

		payload := map[string]interface{}{
			"code": "WC-001",
			"kind": "TOILET",
			"name": "Central Station Toilets",
		}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/facilities", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		mockService.On("Create", mock.Anything, mock.MatchedBy(func(in services.CreateFacilityInput) bool {
			return in.Code == "WC-001" && in.Kind == entities.FacilityKindToilet
		})).Return(&entities.Facility{Code: "WC-001", Status: entities.FacilityStatusActive}, nil)

		handler.CreateFacility(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("maps duplicate code to 409", func(t *testing.T) {
		mockService := new(MockFacilityService)
		handler := handlers.NewFacilityHandler(mockService)

		payload := map[string]interface{}{"code": "WC-001", "kind": "TOILET", "name": "Duplicate"}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/facilities", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewConflictError("facility with code WC-001 already exists"))

		handler.CreateFacility(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFacilityHandler_OverrideStatus(t *testing.T) {
	t.Run("successfully overrides status", func(t *testing.T) {
		mockService := new(MockFacilityService)
		handler := handlers.NewFacilityHandler(mockService)

		payload := map[string]interface{}{"status": "OPERATIONAL"}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("PUT", "/api/facilities/PARK-001/status", bytes.NewBuffer(body))
		req.SetPathValue("code", "PARK-001")
		w := httptest.NewRecorder()

		mockService.On("OverrideStatus", mock.Anything, "PARK-001", entities.FacilityStatusOperational).
			Return(&entities.Facility{Code: "PARK-001", Status: entities.FacilityStatusOperational}, nil)

		handler.OverrideStatus(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestFacilityHandler_ListByKind(t *testing.T) {
	t.Run("lists only the routed kind", func(t *testing.T) {
		mockService := new(MockFacilityService)
		handler := handlers.NewFacilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/parks", nil)
		w := httptest.NewRecorder()

		mockService.On("ListByKind", mock.Anything, entities.FacilityKindPark, mock.Anything).
			Return([]*entities.Facility{{Code: "PARK-001", Kind: entities.FacilityKindPark}}, nil)

		handler.ListByKind(entities.FacilityKindPark)(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["count"])
		mockService.AssertExpectations(t)
	})
}

func TestFacilityHandler_DeleteFacility(t *testing.T) {
	t.Run("maps attached records to 422", func(t *testing.T) {
		mockService := new(MockFacilityService)
		handler := handlers.NewFacilityHandler(mockService)

		req := httptest.NewRequest("DELETE", "/api/facilities/PARK-001", nil)
		req.SetPathValue("code", "PARK-001")
		w := httptest.NewRecorder()

		mockService.On("Delete", mock.Anything, "PARK-001").
			Return(apperrors.NewDomainRuleError("facility PARK-001 still has issues or schedules attached"))

		handler.DeleteFacility(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
