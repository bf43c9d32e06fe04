package repositories

import "context"

// Stores bundles the repositories that participate in one transaction.
type Stores struct {
	Facilities  FacilityRepository
	Issues      IssueRepository
	Schedules   ScheduleRepository
	Attachments AttachmentRepository
}

// UnitOfWork runs a function against transaction-scoped stores. Every public
// engine operation executes its existence check, invariant check, write and
// cascades inside a single Execute call: either all mutations commit or none
// do. A crash between an issue insert and its facility cascade must never
// leave the pair inconsistent.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(stores Stores) error) error
}
