package entities

import (
	"fmt"
	"time"
)

// ScheduleStatus is the lifecycle state of a maintenance schedule.
type ScheduleStatus string

const (
	ScheduleStatusRequested ScheduleStatus = "REQUESTED"
	ScheduleStatusStarted   ScheduleStatus = "STARTED"
	ScheduleStatusPaused    ScheduleStatus = "PAUSED"
	ScheduleStatusCompleted ScheduleStatus = "COMPLETED"
)

// ParseScheduleStatus validates a raw status value.
func ParseScheduleStatus(raw string) (ScheduleStatus, error) {
	switch ScheduleStatus(raw) {
	case ScheduleStatusRequested, ScheduleStatusStarted, ScheduleStatusPaused, ScheduleStatusCompleted:
		return ScheduleStatus(raw), nil
	}
	return "", fmt.Errorf("unknown schedule status %q", raw)
}

// ScheduleActiveStatuses is the subset counted by the one-active-schedule
// invariants (per facility and per linked issue).
var ScheduleActiveStatuses = []ScheduleStatus{
	ScheduleStatusRequested,
	ScheduleStatusStarted,
	ScheduleStatusPaused,
}

// IsActive reports whether the status counts against the single-active-schedule
// invariants.
func (s ScheduleStatus) IsActive() bool {
	return s == ScheduleStatusRequested || s == ScheduleStatusStarted || s == ScheduleStatusPaused
}

// scheduleTransitions is the explicit transition graph. REQUESTED may jump
// straight to COMPLETED so that short repairs close in one step; COMPLETED is
// terminal.
var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleStatusRequested: {ScheduleStatusStarted, ScheduleStatusPaused, ScheduleStatusCompleted},
	ScheduleStatusStarted:   {ScheduleStatusPaused, ScheduleStatusCompleted},
	ScheduleStatusPaused:    {ScheduleStatusStarted, ScheduleStatusCompleted},
	ScheduleStatusCompleted: {},
}

// CanTransitionTo reports whether the graph permits moving from s to next.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	for _, allowed := range scheduleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MaintenanceSchedule represents a planned or in-progress repair against a
// facility, optionally tied to a specific issue.
type MaintenanceSchedule struct {
	ID           string         `json:"id" db:"id"`
	FacilityCode string         `json:"facility_code" db:"facility_code"`
	IssueID      *string        `json:"issue_id,omitempty" db:"issue_id"`
	StartDate    time.Time      `json:"start_date" db:"start_date"`
	EndDate      *time.Time     `json:"end_date,omitempty" db:"end_date"`
	Status       ScheduleStatus `json:"status" db:"status"`
	Remark       *string        `json:"remark,omitempty" db:"remark"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`

	// Facility and Attachments are populated on reads that include relations.
	Facility    *Facility    `json:"facility,omitempty" db:"-"`
	Attachments []Attachment `json:"attachments,omitempty" db:"-"`
}
