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

var issueColumns = []interface{}{
	"id", "facility_code", "description", "severity", "status",
	"resolution_notes", "reported_by", "created_at", "updated_at",
}

// IssueAdapter implements the IssueRepository interface
type IssueAdapter struct {
	db runner
}

// NewIssueAdapter creates a new issue adapter
func NewIssueAdapter(client *postgres.Client) repositories.IssueRepository {
	return &IssueAdapter{db: client.DB()}
}

// newIssueTxAdapter creates an issue adapter scoped to a transaction
func newIssueTxAdapter(tx *sql.Tx) repositories.IssueRepository {
	return &IssueAdapter{db: tx}
}

// Create creates a new issue
func (a *IssueAdapter) Create(ctx context.Context, issue *entities.Issue) error {
	query, args, err := dialect.Insert("issues").Rows(goqu.Record{
		"id":               issue.ID,
		"facility_code":    issue.FacilityCode,
		"description":      issue.Description,
		"severity":         issue.Severity,
		"status":           issue.Status,
		"resolution_notes": issue.ResolutionNotes,
		"reported_by":      issue.ReportedBy,
		"created_at":       issue.CreatedAt,
		"updated_at":       issue.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.db.ExecContext(ctx, query, args...); err != nil {
		// The partial unique index over active issues backs the
		// single-open-issue invariant under concurrency.
		return mapInsertError(err,
			fmt.Sprintf("facility %s already has an open issue", issue.FacilityCode),
			"failed to create issue")
	}
	return nil
}

// GetByID retrieves an issue by ID
func (a *IssueAdapter) GetByID(ctx context.Context, id string) (*entities.Issue, error) {
	query, args, err := dialect.From("issues").
		Select(issueColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	issue, err := scanIssue(a.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("issue with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get issue", err)
	}
	return issue, nil
}

// Update updates an issue
func (a *IssueAdapter) Update(ctx context.Context, issue *entities.Issue) error {
	issue.UpdatedAt = time.Now()

	query, args, err := dialect.Update("issues").Set(goqu.Record{
		"description":      issue.Description,
		"severity":         issue.Severity,
		"status":           issue.Status,
		"resolution_notes": issue.ResolutionNotes,
		"updated_at":       issue.UpdatedAt,
	}).Where(goqu.Ex{"id": issue.ID}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update issue", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("issue with id %s not found", issue.ID))
	}
	return nil
}

// Delete deletes an issue
func (a *IssueAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("issues").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete issue", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("issue with id %s not found", id))
	}
	return nil
}

// FindActiveByFacility returns the facility's open issue, or nil if none
func (a *IssueAdapter) FindActiveByFacility(ctx context.Context, facilityCode string) (*entities.Issue, error) {
	query, args, err := dialect.From("issues").
		Select(issueColumns...).
		Where(goqu.Ex{
			"facility_code": facilityCode,
			"status":        entities.IssueActiveStatuses,
		}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	issue, err := scanIssue(a.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find active issue", err)
	}
	return issue, nil
}

// List retrieves issues with filters
func (a *IssueAdapter) List(ctx context.Context, filter repositories.IssueFilter) ([]*entities.Issue, error) {
	ds := dialect.From("issues").
		Select(issueColumns...).
		Order(goqu.I("created_at").Desc())

	if filter.FacilityCode != "" {
		ds = ds.Where(goqu.Ex{"facility_code": filter.FacilityCode})
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.Severity != "" {
		ds = ds.Where(goqu.Ex{"severity": filter.Severity})
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
		return nil, apperrors.NewInternalError("failed to list issues", err)
	}
	defer rows.Close()

	issues := []*entities.Issue{}
	for rows.Next() {
		issue := &entities.Issue{}
		var notes sql.NullString
		err := rows.Scan(
			&issue.ID,
			&issue.FacilityCode,
			&issue.Description,
			&issue.Severity,
			&issue.Status,
			&notes,
			&issue.ReportedBy,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan issue", err)
		}
		if notes.Valid {
			issue.ResolutionNotes = &notes.String
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating issues", err)
	}
	return issues, nil
}

func scanIssue(row *sql.Row) (*entities.Issue, error) {
	issue := &entities.Issue{}
	var notes sql.NullString
	err := row.Scan(
		&issue.ID,
		&issue.FacilityCode,
		&issue.Description,
		&issue.Severity,
		&issue.Status,
		&notes,
		&issue.ReportedBy,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		issue.ResolutionNotes = &notes.String
	}
	return issue, nil
}
