// Package artifact talks to the external content-addressed storage gateway
// that holds certificate files and other uploads. Files are referenced
// everywhere else by their content id (CID); the bytes never enter the
// primary database.
package artifact

import (
	"context"
	"fmt"
	"time"

	dErrors "docproof/pkg/domain-errors"
)

// MaxUploadSize is the largest accepted file, 10 MiB.
const MaxUploadSize = 10 << 20

// DefaultLinkExpiry is how long a minted access link stays valid.
const DefaultLinkExpiry = 30 * time.Second

// allowedContentTypes are the certificate formats the gateway accepts.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// Upload is one file handed to the gateway.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate enforces the size and format constraints before any network call.
func (u *Upload) Validate() error {
	var fields []dErrors.FieldViolation
	if len(u.Data) == 0 {
		fields = append(fields, dErrors.FieldViolation{Field: "file", Message: "no file uploaded"})
	}
	if len(u.Data) > MaxUploadSize {
		fields = append(fields, dErrors.FieldViolation{
			Field:   "file",
			Message: fmt.Sprintf("file exceeds the %d MiB limit", MaxUploadSize>>20),
		})
	}
	if _, ok := allowedContentTypes[u.ContentType]; !ok {
		fields = append(fields, dErrors.FieldViolation{
			Field:   "file",
			Message: "file must be a PDF, PNG or JPEG",
		})
	}
	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Gateway stores uploads and mints short-lived access links for private
// content. The HTTP client implements this; tests use the in-memory fake.
type Gateway interface {
	Pin(ctx context.Context, upload Upload) (string, error)
	AccessLink(ctx context.Context, cid string, expiry time.Duration) (string, error)
}
