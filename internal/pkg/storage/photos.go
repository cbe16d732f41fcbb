package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parkhive/parkhive-api/internal/pkg/imaging"
)

// PhotoService processes garage photos and stores them in the bucket.
type PhotoService struct {
	bucket    *Bucket
	processor *imaging.Processor
}

func NewPhotoService(bucket *Bucket, processor *imaging.Processor) *PhotoService {
	return &PhotoService{bucket: bucket, processor: processor}
}

// UploadGaragePhoto resizes the upload, stores photo and thumbnail, and
// returns the photo's public URL. Re-uploading replaces the previous photo.
func (s *PhotoService) UploadGaragePhoto(ctx context.Context, garageID uuid.UUID, data []byte, _ string) (string, error) {
	processed, err := s.processor.Process(data)
	if err != nil {
		return "", err
	}

	ext := "jpg"
	if processed.ContentType == "image/png" {
		ext = "png"
	}

	photoKey := fmt.Sprintf("garages/%s/photo.%s", garageID, ext)
	thumbKey := fmt.Sprintf("garages/%s/thumb.%s", garageID, ext)

	if err := s.bucket.Put(ctx, photoKey, processed.Original, processed.ContentType); err != nil {
		return "", err
	}
	if err := s.bucket.Put(ctx, thumbKey, processed.Thumbnail, processed.ContentType); err != nil {
		return "", err
	}

	return s.bucket.URL(photoKey), nil
}
