package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// MaintenanceEventType represents the type of maintenance event
type MaintenanceEventType string

const (
	MaintenanceEventTypeIssueReported         MaintenanceEventType = "issue_reported"
	MaintenanceEventTypeIssueStatusChanged    MaintenanceEventType = "issue_status_changed"
	MaintenanceEventTypeMaintenanceScheduled  MaintenanceEventType = "maintenance_scheduled"
	MaintenanceEventTypeMaintenanceCompleted  MaintenanceEventType = "maintenance_completed"
	MaintenanceEventTypeFacilityStatusChanged MaintenanceEventType = "facility_status_changed"
)

// MaintenanceEvent represents a real-time update published when the engine
// mutates an entity or cascades a status change.
type MaintenanceEvent struct {
	ID            string                 `json:"id"`
	FacilityCode  string                 `json:"facility_code"`
	EventType     MaintenanceEventType   `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields"`
}

// NewMaintenanceEvent creates a new maintenance event
func NewMaintenanceEvent(facilityCode string, eventType MaintenanceEventType, changedFields map[string]interface{}) *MaintenanceEvent {
	return &MaintenanceEvent{
		ID:            generateEventID(),
		FacilityCode:  facilityCode,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}

func generateEventID() string {
	return time.Now().Format("20060102150405") + "-" + randomString(8)
}

func randomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		return time.Now().Format("150405.000")
	}
	return hex.EncodeToString(bytes)[:length]
}
