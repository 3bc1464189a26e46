package ports

import (
	"context"
	"io"
)

// ImageRef identifies a stored image.
type ImageRef struct {
	ID  string
	URL string
}

// Image is an open stored image. Callers must close Body.
type Image struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// ImageStore persists uploaded product images.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (ImageRef, error)
	Open(ctx context.Context, id string) (*Image, error)
}
