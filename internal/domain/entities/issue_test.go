package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicworks/facilitycare/internal/domain/entities"
)

func TestIssueStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    entities.IssueStatus
		to      entities.IssueStatus
		allowed bool
	}{
		{entities.IssueStatusReported, entities.IssueStatusInProgress, true},
		{entities.IssueStatusReported, entities.IssueStatusResolved, true},
		{entities.IssueStatusReported, entities.IssueStatusClosed, true},
		{entities.IssueStatusInProgress, entities.IssueStatusResolved, true},
		{entities.IssueStatusInProgress, entities.IssueStatusClosed, true},
		{entities.IssueStatusInProgress, entities.IssueStatusReported, false},
		{entities.IssueStatusResolved, entities.IssueStatusClosed, true},
		{entities.IssueStatusResolved, entities.IssueStatusInProgress, false},
		{entities.IssueStatusClosed, entities.IssueStatusReported, false},
		{entities.IssueStatusClosed, entities.IssueStatusInProgress, false},
		{entities.IssueStatusClosed, entities.IssueStatusResolved, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestIssueStatus_IsActive(t *testing.T) {
	assert.True(t, entities.IssueStatusReported.IsActive())
	assert.True(t, entities.IssueStatusInProgress.IsActive())
	assert.False(t, entities.IssueStatusResolved.IsActive())
	assert.False(t, entities.IssueStatusClosed.IsActive())
}

func TestParseIssueSeverity(t *testing.T) {
	for _, raw := range []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		severity, err := entities.ParseIssueSeverity(raw)
		assert.NoError(t, err)
		assert.Equal(t, entities.IssueSeverity(raw), severity)
	}

	_, err := entities.ParseIssueSeverity("URGENT")
	assert.Error(t, err)
}

func TestResolutionNotesNeverRequired(t *testing.T) {
	// Issues may resolve and close without notes; the requirement applies to
	// schedule remarks only.
	for _, status := range []entities.IssueStatus{
		entities.IssueStatusReported,
		entities.IssueStatusInProgress,
		entities.IssueStatusResolved,
		entities.IssueStatusClosed,
	} {
		assert.False(t, entities.ResolutionNotesRequiredAt(status), "status %s", status)
	}
}
