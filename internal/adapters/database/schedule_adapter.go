package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

var scheduleColumns = []interface{}{
	"id", "facility_code", "issue_id", "start_date", "end_date",
	"status", "remark", "created_at", "updated_at",
}

// ScheduleAdapter implements the ScheduleRepository interface
type ScheduleAdapter struct {
	db runner
}

// NewScheduleAdapter creates a new schedule adapter
func NewScheduleAdapter(client *postgres.Client) repositories.ScheduleRepository {
	return &ScheduleAdapter{db: client.DB()}
}

// newScheduleTxAdapter creates a schedule adapter scoped to a transaction
func newScheduleTxAdapter(tx *sql.Tx) repositories.ScheduleRepository {
	return &ScheduleAdapter{db: tx}
}

// Create creates a new schedule
func (a *ScheduleAdapter) Create(ctx context.Context, schedule *entities.MaintenanceSchedule) error {
	query, args, err := dialect.Insert("maintenance_schedules").Rows(goqu.Record{
		"id":            schedule.ID,
		"facility_code": schedule.FacilityCode,
		"issue_id":      schedule.IssueID,
		"start_date":    schedule.StartDate,
		"end_date":      schedule.EndDate,
		"status":        schedule.Status,
		"remark":        schedule.Remark,
		"created_at":    schedule.CreatedAt,
		"updated_at":    schedule.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.db.ExecContext(ctx, query, args...); err != nil {
		// Partial unique indexes over active schedules (per facility and
		// per issue) back the single-active-schedule invariants.
		return mapInsertError(err,
			fmt.Sprintf("facility %s already has an active maintenance schedule", schedule.FacilityCode),
			"failed to create schedule")
	}
	return nil
}

// GetByID retrieves a schedule by ID
func (a *ScheduleAdapter) GetByID(ctx context.Context, id string) (*entities.MaintenanceSchedule, error) {
	query, args, err := dialect.From("maintenance_schedules").
		Select(scheduleColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	schedule, err := scanSchedule(a.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("schedule with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get schedule", err)
	}
	return schedule, nil
}

// Update updates a schedule
func (a *ScheduleAdapter) Update(ctx context.Context, schedule *entities.MaintenanceSchedule) error {
	schedule.UpdatedAt = time.Now()

	query, args, err := dialect.Update("maintenance_schedules").Set(goqu.Record{
		"start_date": schedule.StartDate,
		"end_date":   schedule.EndDate,
		"status":     schedule.Status,
		"remark":     schedule.Remark,
		"updated_at": schedule.UpdatedAt,
	}).Where(goqu.Ex{"id": schedule.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update schedule", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("schedule with id %s not found", schedule.ID))
	}
	return nil
}

// Delete deletes a schedule
func (a *ScheduleAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("maintenance_schedules").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete schedule", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("schedule with id %s not found", id))
	}
	return nil
}

// FindActiveByFacility returns the facility's active schedule, or nil if none
func (a *ScheduleAdapter) FindActiveByFacility(ctx context.Context, facilityCode string) (*entities.MaintenanceSchedule, error) {
	return a.findActive(ctx, goqu.Ex{
		"facility_code": facilityCode,
		"status":        entities.ScheduleActiveStatuses,
	})
}

// FindActiveByIssue returns the active schedule linked to the issue, or nil
// if none
func (a *ScheduleAdapter) FindActiveByIssue(ctx context.Context, issueID string) (*entities.MaintenanceSchedule, error) {
	return a.findActive(ctx, goqu.Ex{
		"issue_id": issueID,
		"status":   entities.ScheduleActiveStatuses,
	})
}

func (a *ScheduleAdapter) findActive(ctx context.Context, where goqu.Ex) (*entities.MaintenanceSchedule, error) {
	query, args, err := dialect.From("maintenance_schedules").
		Select(scheduleColumns...).
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	schedule, err := scanSchedule(a.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find active schedule", err)
	}
	return schedule, nil
}

// List retrieves schedules with filters
func (a *ScheduleAdapter) List(ctx context.Context, filter repositories.ScheduleFilter) ([]*entities.MaintenanceSchedule, error) {
	ds := dialect.From("maintenance_schedules").
		Select(scheduleColumns...).
		Order(goqu.I("created_at").Desc())

	if filter.FacilityCode != "" {
		ds = ds.Where(goqu.Ex{"facility_code": filter.FacilityCode})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list schedules", err)
	}
	defer rows.Close()

	schedules := []*entities.MaintenanceSchedule{}
	for rows.Next() {
		schedule, err := scanScheduleRows(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan schedule", err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating schedules", err)
	}
	return schedules, nil
}

func scanSchedule(row *sql.Row) (*entities.MaintenanceSchedule, error) {
	schedule := &entities.MaintenanceSchedule{}
	var issueID, remark sql.NullString
	var endDate sql.NullTime
	err := row.Scan(
		&schedule.ID,
		&schedule.FacilityCode,
		&issueID,
		&schedule.StartDate,
		&endDate,
		&schedule.Status,
		&remark,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyScheduleNullables(schedule, issueID, endDate, remark)
	return schedule, nil
}

func scanScheduleRows(rows *sql.Rows) (*entities.MaintenanceSchedule, error) {
	schedule := &entities.MaintenanceSchedule{}
	var issueID, remark sql.NullString
	var endDate sql.NullTime
	err := rows.Scan(
		&schedule.ID,
		&schedule.FacilityCode,
		&issueID,
		&schedule.StartDate,
		&endDate,
		&schedule.Status,
		&remark,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	applyScheduleNullables(schedule, issueID, endDate, remark)
	return schedule, nil
}

func applyScheduleNullables(schedule *entities.MaintenanceSchedule, issueID sql.NullString, endDate sql.NullTime, remark sql.NullString) {
	if issueID.Valid {
		schedule.IssueID = &issueID.String
	}
	if endDate.Valid {
		schedule.EndDate = &endDate.Time
	}
	if remark.Valid {
		schedule.Remark = &remark.String
	}
}
