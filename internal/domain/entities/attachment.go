package entities

import "time"

// Attachment records a file stored against a maintenance schedule. The bytes
// live in object storage; this row keeps the URL and metadata. Attachments are
// owned by their schedule and are deleted with it.
type Attachment struct {
	ID         string    `json:"id" db:"id"`
	ScheduleID string    `json:"schedule_id" db:"schedule_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	URL        string    `json:"url" db:"url"`
	Size       int64     `json:"size" db:"size"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
