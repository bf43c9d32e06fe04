package providers

import (
	"context"
	"io"
)

// StoredObject describes a file persisted by the attachment sink.
type StoredObject struct {
	URL      string
	Size     int64
	MimeType string
	FileName string
}

// AttachmentSink stores attachment bytes outside the database and returns a
// URL for the record kept against the owning schedule. It has no business
// rules of its own.
type AttachmentSink interface {
	// Store persists the content read from r under the owner's namespace.
	Store(ctx context.Context, ownerID, fileName, mimeType string, r io.Reader, size int64) (*StoredObject, error)
}
