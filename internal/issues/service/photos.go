package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"chalkstone_backend/internal/adapters/storage"
	"chalkstone_backend/platform/apperr"
	"chalkstone_backend/platform/formcheck"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	msgTooManyPhotos        = "too many photos"
	msgPhotosUnavailable    = "photo uploads are not available"
	msgPhotoTooLarge        = "photo is too large"
	msgPhotoTypeNotAllowed  = "only JPEG, PNG, GIF and WebP photos are allowed"
	msgPhotoLocationMissing = "photo has no location data"
)

// Photo is an uploaded image attached to a report.
type Photo struct {
	FileName string
	Size     int64
	Content  io.ReadSeeker
}

func (s *Service) storePhotos(ctx context.Context, reporter uuid.UUID, photos []Photo) ([]string, error) {
	if len(photos) == 0 {
		return []string{}, nil
	}
	if s.storage == nil {
		return nil, apperr.BadRequest(msgPhotosUnavailable)
	}
	if limit := s.cfg.GetMaxImagesPerIssue(); len(photos) > limit {
		return nil, apperr.BadRequest(msgTooManyPhotos).WithDetails(map[string]int{"max": limit})
	}

	bucket := s.cfg.GetMinioBucketIssueImages()
	folder := "issues/" + reporter.String()
	keys := make([]string, 0, len(photos))

	for _, photo := range photos {
		contentType, err := s.checkPhoto(photo)
		if err != nil {
			s.deletePhotos(ctx, keys)
			return nil, err
		}

		key, err := s.storage.UploadFile(ctx, bucket, folder, photo.FileName, contentType, photo.Content, photo.Size)
		if err != nil {
			s.deletePhotos(ctx, keys)
			return nil, fmt.Errorf("store photo: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// checkPhoto enforces the size limit and sniffs the real content type,
// leaving Content rewound for the upload.
func (s *Service) checkPhoto(photo Photo) (string, error) {
	if err := s.storage.ValidateFileSize(photo.Size); err != nil {
		return "", apperr.TooLarge(msgPhotoTooLarge).WithDetails(map[string]int64{"maxBytes": s.storage.GetMaxFileSize()})
	}

	contentType, err := storage.DetectContentType(photo.Content)
	if err != nil {
		return "", err
	}
	if _, err := photo.Content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind photo: %w", err)
	}
	if err := s.storage.ValidateContentType(contentType); err != nil {
		return "", apperr.BadRequest(msgPhotoTypeNotAllowed).WithDetails(map[string]string{"file": photo.FileName, "contentType": contentType})
	}
	return contentType, nil
}

func (s *Service) deletePhotos(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	bucket := s.cfg.GetMinioBucketIssueImages()
	for _, key := range keys {
		if err := s.storage.DeleteObject(context.WithoutCancel(ctx), bucket, key); err != nil {
			s.log.Warn("failed to delete orphaned photo", "key", key, "error", err)
		}
	}
}

func (s *Service) imageURLs(ctx context.Context, keys []string) []string {
	if s.storage == nil || len(keys) == 0 {
		return nil
	}
	bucket := s.cfg.GetMinioBucketIssueImages()
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		presigned, err := s.storage.GenerateDownloadURL(ctx, bucket, key)
		if err != nil {
			s.log.Warn("failed to presign photo", "key", key, "error", err)
			continue
		}
		urls = append(urls, presigned.URL)
	}
	return urls
}

// PhotoLocation reads the GPS position from the EXIF data of a photo so the
// reporter can drop the pin where the picture was taken.
func PhotoLocation(r io.Reader) (lat, lng float64, err error) {
	x, err := exif.Decode(r)
	if err != nil {
		return 0, 0, apperr.NotFound(msgPhotoLocationMissing)
	}

	lat, lng, err = x.LatLong()
	if err != nil {
		return 0, 0, apperr.NotFound(msgPhotoLocationMissing)
	}

	if !formcheck.IsValidCoordinate(lat, formcheck.AxisLatitude) || !formcheck.IsValidCoordinate(lng, formcheck.AxisLongitude) {
		return 0, 0, apperr.Wrap(apperr.KindNotFound, msgPhotoLocationMissing,
			errors.New("exif position out of range"))
	}
	return lat, lng, nil
}
