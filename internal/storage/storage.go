// Package storage validates uploaded images and hands them to a blob backend.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxSize int64 = 10 << 20 // 10MB

// Buckets used by the service.
const (
	BucketContactImages = "contact-images"
	BucketProductImages = "images"
)

var (
	ErrNoImage          = errors.New("missing image")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a file received from a form.
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Image is an upload that passed the size and type checks.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Uploader checks an upload locally, then stores it and returns its public
// URL. Validate never touches the network.
type Uploader interface {
	Validate(up Upload) (*Image, error)
	Store(ctx context.Context, bucket string, img *Image) (string, error)
}

// Backend persists raw bytes under an object key.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (publicURL string, err error)
}

// ImageStore is the only upload path: it enforces the size limit and the
// image type before anything reaches the backend.
type ImageStore struct {
	Backend Backend
	MaxSize int64
	now     func() time.Time
}

func NewImageStore(backend Backend, maxSize int64) *ImageStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &ImageStore{Backend: backend, MaxSize: maxSize, now: time.Now}
}

// Validate enforces the size limit and the image type.
func (s *ImageStore) Validate(up Upload) (*Image, error) {
	if up.Reader == nil {
		return nil, ErrNoImage
	}
	// The declared size is only a first filter; the read below is capped too.
	if up.Size > s.MaxSize {
		return nil, ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(up.Reader, s.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if int64(len(data)) > s.MaxSize {
		return nil, ErrImageTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

// Store writes a validated image under {bucket}/{uuid}-{unix}{ext}.
func (s *ImageStore) Store(ctx context.Context, bucket string, img *Image) (string, error) {
	key := fmt.Sprintf("%s/%s-%d%s", bucket, uuid.NewString(), s.now().Unix(), img.Ext)
	return s.Backend.Put(ctx, key, img.ContentType, img.Data)
}

func (s *ImageStore) UploadImage(ctx context.Context, bucket string, up Upload) (string, error) {
	img, err := s.Validate(up)
	if err != nil {
		return "", err
	}
	return s.Store(ctx, bucket, img)
}

// readerOf is shared by backends that need a fresh reader per attempt.
func readerOf(data []byte) io.Reader {
	return bytes.NewReader(data)
}
