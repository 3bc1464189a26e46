package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

const (
	imageBucket       = "images"
	imageTransferTime = 30 * time.Second
	imageURLPrefix    = "/images/"
)

// ImageStore keeps product images in GridFS and serves them under
// /images/:id.
type ImageStore struct {
	db *mongo.Database
}

func NewImageStore(db *mongo.Database) *ImageStore {
	return &ImageStore{db: db}
}

// bucket returns a fresh bucket handle. Deadlines are per handle, so one is
// built per transfer.
func (s *ImageStore) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(s.db, options.GridFSBucket().SetName(imageBucket))
}

func (s *ImageStore) Upload(ctx context.Context, filename, contentType string, body io.Reader) (ports.ImageRef, error) {
	b, err := s.bucket()
	if err != nil {
		return ports.ImageRef{}, fmt.Errorf("image bucket: %w", err)
	}
	if err := b.SetWriteDeadline(deadline(ctx)); err != nil {
		return ports.ImageRef{}, err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	id, err := b.UploadFromStream(filename, body, opts)
	if err != nil {
		return ports.ImageRef{}, fmt.Errorf("upload image: %w", err)
	}

	return ports.ImageRef{ID: id.Hex(), URL: imageURLPrefix + id.Hex()}, nil
}

// Open returns a stream over the stored image. The caller closes Body.
func (s *ImageStore) Open(ctx context.Context, id string) (*ports.Image, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrImageNotFound
	}

	b, err := s.bucket()
	if err != nil {
		return nil, fmt.Errorf("image bucket: %w", err)
	}
	if err := b.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok {
			contentType = ct
		}
	}

	return &ports.Image{Body: stream, ContentType: contentType, Size: file.Length}, nil
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(imageTransferTime)
}
