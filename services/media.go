package services

import (
	"context"
	"io"
)

// MediaStore is the external photo storage collaborator. The production
// implementation uploads to R2; tests use a fake.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
