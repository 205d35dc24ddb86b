// Package storage handles evidentiary documents: payment proofs, invoices
// and supplementary files. Every upload is validated against a MIME
// allow-list and a size ceiling before it reaches a backend; references
// handed back to callers are opaque object keys.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

// MaxFileSize is the upload ceiling, 5 MiB.
const MaxFileSize = 5 * 1024 * 1024

var allowedMIMEs = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Object is a stored document ready to stream back to a caller.
type Object struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64
}

// Store is the document backend used by the attachment service. Put returns
// the opaque key under which the document was stored.
type Store interface {
	Put(ctx context.Context, kind model.AttachmentKind, r io.Reader, size int64) (string, error)
	Get(ctx context.Context, kind model.AttachmentKind, key string) (*Object, error)
	Delete(ctx context.Context, kind model.AttachmentKind, key string) error
}

// readAndValidate buffers the upload, enforces the size ceiling and sniffs
// the content type from the bytes themselves rather than trusting the
// client-declared header. Returns the payload, the detected content type and
// a fresh object key.
func readAndValidate(r io.Reader, size int64) ([]byte, string, string, error) {
	if size > MaxFileSize {
		return nil, "", "", fmt.Errorf("%w: file exceeds %d bytes", apperr.ErrUnsupportedFile, MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", "", fmt.Errorf("%w: empty file", apperr.ErrUnsupportedFile)
	}
	if len(data) > MaxFileSize {
		return nil, "", "", fmt.Errorf("%w: file exceeds %d bytes", apperr.ErrUnsupportedFile, MaxFileSize)
	}

	mtype := mimetype.Detect(data)
	if !allowedMIMEs[mtype.String()] {
		return nil, "", "", fmt.Errorf("%w: %s not allowed, accepted types are JPEG, PNG, GIF, WebP and PDF",
			apperr.ErrUnsupportedFile, mtype.String())
	}

	key := uuid.NewString() + mtype.Extension()
	return data, mtype.String(), key, nil
}
