package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/civicworks/facilitycare/internal/domain/entities"
	"github.com/civicworks/facilitycare/internal/domain/repositories"
	"github.com/civicworks/facilitycare/internal/infrastructure/clients/postgres"
	apperrors "github.com/civicworks/facilitycare/pkg/errors"
)

// AttachmentAdapter implements the AttachmentRepository interface
type AttachmentAdapter struct {
	db runner
}

// NewAttachmentAdapter creates a new attachment adapter
func NewAttachmentAdapter(client *postgres.Client) repositories.AttachmentRepository {
	return &AttachmentAdapter{db: client.DB()}
}

// newAttachmentTxAdapter creates an attachment adapter scoped to a transaction
func newAttachmentTxAdapter(tx *sql.Tx) repositories.AttachmentRepository {
	return &AttachmentAdapter{db: tx}
}

// Create records an attachment against a schedule
func (a *AttachmentAdapter) Create(ctx context.Context, attachment *entities.Attachment) error {
	query, args, err := dialect.Insert("schedule_attachments").Rows(goqu.Record{
		"id":          attachment.ID,
		"schedule_id": attachment.ScheduleID,
		"file_name":   attachment.FileName,
		"url":         attachment.URL,
		"size":        attachment.Size,
		"mime_type":   attachment.MimeType,
		"created_at":  attachment.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create attachment", err)
	}
	return nil
}

// ListBySchedule returns all attachments recorded for a schedule
func (a *AttachmentAdapter) ListBySchedule(ctx context.Context, scheduleID string) ([]entities.Attachment, error) {
	query, args, err := dialect.From("schedule_attachments").
		Select("id", "schedule_id", "file_name", "url", "size", "mime_type", "created_at").
		Where(goqu.Ex{"schedule_id": scheduleID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list attachments", err)
	}
	defer rows.Close()

	attachments := []entities.Attachment{}
	for rows.Next() {
		var attachment entities.Attachment
		err := rows.Scan(
			&attachment.ID,
			&attachment.ScheduleID,
			&attachment.FileName,
			&attachment.URL,
			&attachment.Size,
			&attachment.MimeType,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan attachment", err)
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating attachments", err)
	}
	return attachments, nil
}

// DeleteBySchedule removes all attachment rows for a schedule
func (a *AttachmentAdapter) DeleteBySchedule(ctx context.Context, scheduleID string) error {
	query, args, err := dialect.Delete("schedule_attachments").
		Where(goqu.Ex{"schedule_id": scheduleID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err = a.db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete attachments", err)
	}
	return nil
}
