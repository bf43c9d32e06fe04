package entities

// The note-requirement policy makes the asymmetry between the two entities an
// explicit, auditable table instead of ad hoc checks scattered through the
// services: a schedule must carry a remark before it may pause or complete,
// while an issue may resolve or close without resolution notes.

var scheduleNoteRequired = map[ScheduleStatus]bool{
	ScheduleStatusRequested: false,
	ScheduleStatusStarted:   false,
	ScheduleStatusPaused:    true,
	ScheduleStatusCompleted: true,
}

var issueNoteRequired = map[IssueStatus]bool{
	IssueStatusReported:   false,
	IssueStatusInProgress: false,
	IssueStatusResolved:   false,
	IssueStatusClosed:     false,
}

// RemarkRequiredAt reports whether a schedule in the given status must carry a
// non-empty remark.
func RemarkRequiredAt(s ScheduleStatus) bool {
	return scheduleNoteRequired[s]
}

// ResolutionNotesRequiredAt reports whether an issue in the given status must
// carry resolution notes.
func ResolutionNotesRequiredAt(s IssueStatus) bool {
	return issueNoteRequired[s]
}
