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

var facilityColumns = []interface{}{
	"code", "kind", "name", "location", "notes", "status", "created_at", "updated_at",
}

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	db runner
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{db: client.DB()}
}

// newFacilityTxAdapter creates a facility adapter scoped to a transaction
func newFacilityTxAdapter(tx *sql.Tx) repositories.FacilityRepository {
	return &FacilityAdapter{db: tx}
}

// Create creates a new facility
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	query, args, err := dialect.Insert("facilities").Rows(goqu.Record{
		"code":       facility.Code,
		"kind":       facility.Kind,
		"name":       facility.Name,
		"location":   facility.Location,
		"notes":      facility.Notes,
		"status":     facility.Status,
		"created_at": facility.CreatedAt,
		"updated_at": facility.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.db.ExecContext(ctx, query, args...); err != nil {
		return mapInsertError(err,
			fmt.Sprintf("facility with code %s already exists", facility.Code),
			"failed to create facility")
	}
	return nil
}

// GetByCode retrieves a facility by code
func (a *FacilityAdapter) GetByCode(ctx context.Context, code string) (*entities.Facility, error) {
	query, args, err := dialect.From("facilities").
		Select(facilityColumns...).
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	facility := &entities.Facility{}
	err = a.db.QueryRowContext(ctx, query, args...).Scan(
		&facility.Code,
		&facility.Kind,
		&facility.Name,
		&facility.Location,
		&facility.Notes,
		&facility.Status,
		&facility.CreatedAt,
		&facility.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with code %s not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility", err)
	}
	return facility, nil
}

// Update updates a facility
func (a *FacilityAdapter) Update(ctx context.Context, facility *entities.Facility) error {
	facility.UpdatedAt = time.Now()

	query, args, err := dialect.Update("facilities").Set(goqu.Record{
		"kind":       facility.Kind,
		"name":       facility.Name,
		"location":   facility.Location,
		"notes":      facility.Notes,
		"status":     facility.Status,
		"updated_at": facility.UpdatedAt,
	}).Where(goqu.Ex{"code": facility.Code}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update facility", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with code %s not found", facility.Code))
	}
	return nil
}

// Delete deletes a facility
func (a *FacilityAdapter) Delete(ctx context.Context, code string) error {
	query, args, err := dialect.Delete("facilities").Where(goqu.Ex{"code": code}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDeleteError(err,
			fmt.Sprintf("facility %s still has issues or schedules attached", code),
			"failed to delete facility")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with code %s not found", code))
	}
	return nil
}

// List retrieves facilities with filters
func (a *FacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.Facility, error) {
	ds := dialect.From("facilities").
		Select(facilityColumns...).
		Order(goqu.I("created_at").Desc())

	if filter.Kind != "" {
		ds = ds.Where(goqu.Ex{"kind": filter.Kind})
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
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.Facility{}
	for rows.Next() {
		facility := &entities.Facility{}
		err := rows.Scan(
			&facility.Code,
			&facility.Kind,
			&facility.Name,
			&facility.Location,
			&facility.Notes,
			&facility.Status,
			&facility.CreatedAt,
			&facility.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating facilities", err)
	}
	return facilities, nil
}
