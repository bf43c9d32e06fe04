package routes

import (
	"net/http"

	"github.com/civicworks/facilitycare/internal/api/handlers"
	"github.com/civicworks/facilitycare/internal/api/middleware"
	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler *handlers.FacilityHandler
	issueHandler    *handlers.IssueHandler
	scheduleHandler *handlers.ScheduleHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	issueHandler *handlers.IssueHandler,
	scheduleHandler *handlers.ScheduleHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		facilityHandler: facilityHandler,
		issueHandler:    issueHandler,
		scheduleHandler: scheduleHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Facility endpoints

	r.mux.HandleFunc("POST /api/facilities", r.facilityHandler.CreateFacility)
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{code}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("PATCH /api/facilities/{code}", r.facilityHandler.UpdateFacility)
	r.mux.HandleFunc("DELETE /api/facilities/{code}", r.facilityHandler.DeleteFacility)

	// Explicit status override, outside the cascade policy
	r.mux.HandleFunc("PUT /api/facilities/{code}/status", r.facilityHandler.OverrideStatus)

	// Per-kind listing routes
	r.mux.HandleFunc("GET /api/parks", r.facilityHandler.ListByKind(entities.FacilityKindPark))
	r.mux.HandleFunc("GET /api/toilets", r.facilityHandler.ListByKind(entities.FacilityKindToilet))
	r.mux.HandleFunc("GET /api/football-fields", r.facilityHandler.ListByKind(entities.FacilityKindFootballField))

	// Issue endpoints

	r.mux.HandleFunc("POST /api/facilities/{code}/issues", r.issueHandler.CreateIssue)
	r.mux.HandleFunc("GET /api/facilities/{code}/issues", r.issueHandler.ListIssues)
	r.mux.HandleFunc("GET /api/issues", r.issueHandler.ListIssues)
	r.mux.HandleFunc("GET /api/issues/{id}", r.issueHandler.GetIssue)
	r.mux.HandleFunc("PATCH /api/issues/{id}/status", r.issueHandler.UpdateIssueStatus)
	r.mux.HandleFunc("DELETE /api/issues/{id}", r.issueHandler.DeleteIssue)

	// Maintenance schedule endpoints

	r.mux.HandleFunc("POST /api/facilities/{code}/schedules", r.scheduleHandler.CreateSchedule)
	r.mux.HandleFunc("GET /api/facilities/{code}/schedules", r.scheduleHandler.ListSchedules)
	r.mux.HandleFunc("GET /api/schedules", r.scheduleHandler.ListSchedules)
	r.mux.HandleFunc("GET /api/schedules/{id}", r.scheduleHandler.GetSchedule)
	r.mux.HandleFunc("PATCH /api/schedules/{id}", r.scheduleHandler.UpdateSchedule)
	r.mux.HandleFunc("DELETE /api/schedules/{id}", r.scheduleHandler.DeleteSchedule)

	// Attachment endpoints

	r.mux.HandleFunc("POST /api/schedules/{id}/attachments", r.scheduleHandler.AddAttachment)
	r.mux.HandleFunc("GET /api/schedules/{id}/attachments", r.scheduleHandler.ListAttachments)

	// Apply middleware in reverse order (last middleware wraps first)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
