package entities

import (
	"fmt"
	"time"
)

// IssueSeverity grades how urgent a reported fault is.
type IssueSeverity string

const (
	IssueSeverityLow      IssueSeverity = "LOW"
	IssueSeverityMedium   IssueSeverity = "MEDIUM"
	IssueSeverityHigh     IssueSeverity = "HIGH"
	IssueSeverityCritical IssueSeverity = "CRITICAL"
)

// ParseIssueSeverity validates a raw severity value.
func ParseIssueSeverity(raw string) (IssueSeverity, error) {
	switch IssueSeverity(raw) {
	case IssueSeverityLow, IssueSeverityMedium, IssueSeverityHigh, IssueSeverityCritical:
		return IssueSeverity(raw), nil
	}
	return "", fmt.Errorf("unknown issue severity %q", raw)
}

// IssueStatus is the lifecycle state of a reported fault.
type IssueStatus string

const (
	IssueStatusReported   IssueStatus = "REPORTED"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// ParseIssueStatus validates a raw status value.
func ParseIssueStatus(raw string) (IssueStatus, error) {
	switch IssueStatus(raw) {
	case IssueStatusReported, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return IssueStatus(raw), nil
	}
	return "", fmt.Errorf("unknown issue status %q", raw)
}

// IssueActiveStatuses is the subset counted by the one-open-issue-per-facility
// invariant.
var IssueActiveStatuses = []IssueStatus{IssueStatusReported, IssueStatusInProgress}

// IsActive reports whether the status counts against the single-open-issue
// invariant.
func (s IssueStatus) IsActive() bool {
	return s == IssueStatusReported || s == IssueStatusInProgress
}

// issueTransitions is the explicit forward-only transition graph. CLOSED is
// terminal; reopening requires a new issue.
var issueTransitions = map[IssueStatus][]IssueStatus{
	IssueStatusReported:   {IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed},
	IssueStatusInProgress: {IssueStatusResolved, IssueStatusClosed},
	IssueStatusResolved:   {IssueStatusClosed},
	IssueStatusClosed:     {},
}

// CanTransitionTo reports whether the graph permits moving from s to next.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	for _, allowed := range issueTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Issue represents a reported defect against a facility.
type Issue struct {
	ID              string        `json:"id" db:"id"`
	FacilityCode    string        `json:"facility_code" db:"facility_code"`
	Description     string        `json:"description" db:"description"`
	Severity        IssueSeverity `json:"severity" db:"severity"`
	Status          IssueStatus   `json:"status" db:"status"`
	ResolutionNotes *string       `json:"resolution_notes,omitempty" db:"resolution_notes"`
	ReportedBy      string        `json:"reported_by" db:"reported_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`

	// Facility is populated on reads that include relations.
	Facility *Facility `json:"facility,omitempty" db:"-"`
}
