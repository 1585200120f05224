package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type recordingBackend struct {
	key, contentType string
	data             []byte
	err              error
}

func (r *recordingBackend) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.key, r.contentType, r.data = key, contentType, data
	return "https://cdn.example.net/" + key, nil
}

func TestUploadImage_StoresPNG(t *testing.T) {
	backend := &recordingBackend{}
	store := NewImageStore(backend, 1024)

	url, err := store.UploadImage(context.Background(), BucketContactImages, Upload{
		Filename: "shot.png", Size: int64(len(pngHeader)), Reader: bytes.NewReader(pngHeader),
	})

	require.NoError(t, err)
	assert.Equal(t, "image/png", backend.contentType)
	assert.True(t, strings.HasPrefix(backend.key, "contact-images/"))
	assert.True(t, strings.HasSuffix(backend.key, ".png"))
	assert.Equal(t, "https://cdn.example.net/"+backend.key, url)
}

func TestUploadImage_RejectsOversize(t *testing.T) {
	store := NewImageStore(&recordingBackend{}, 16)

	_, err := store.UploadImage(context.Background(), BucketProductImages, Upload{Size: 17, Reader: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	// A lying Size header is caught by the capped read.
	_, err = store.UploadImage(context.Background(), BucketProductImages, Upload{Size: 1, Reader: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestUploadImage_RejectsNonImages(t *testing.T) {
	store := NewImageStore(&recordingBackend{}, 1024)

	_, err := store.UploadImage(context.Background(), BucketProductImages, Upload{Reader: strings.NewReader("plain text body")})
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = store.UploadImage(context.Background(), BucketProductImages, Upload{})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestValidate_NeverReachesBackend(t *testing.T) {
	backend := &recordingBackend{}
	store := NewImageStore(backend, 16)

	_, err := store.Validate(Upload{Filename: "big.png", Size: 64, Reader: bytes.NewReader(pngHeader)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.Empty(t, backend.key)

	store.MaxSize = 1024
	img, err := store.Validate(Upload{Filename: "ok.png", Reader: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Ext)
	assert.Equal(t, pngHeader, img.Data)
	assert.Empty(t, backend.key)
}

func TestUploadImage_PropagatesBackendError(t *testing.T) {
	store := NewImageStore(&recordingBackend{err: errors.New("bucket gone")}, 1024)
	_, err := store.UploadImage(context.Background(), BucketProductImages, Upload{Reader: bytes.NewReader(pngHeader)})
	assert.EqualError(t, err, "bucket gone")
}

func TestLocalBackend_WritesFile(t *testing.T) {
	dir := t.TempDir()
	b := NewLocalBackend(dir, "http://localhost:8084/uploads/")

	url, err := b.Put(context.Background(), "images/a.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8084/uploads/images/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}
