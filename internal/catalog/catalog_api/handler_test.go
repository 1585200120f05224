package catalog_api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"buildnchill-shop/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedFile struct {
	io.Reader
	closed bool
}

func (f *trackedFile) Close() error {
	f.closed = true
	return nil
}

func TestDecodeProductMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "VIP"))
	require.NoError(t, mw.WriteField("command", "lp user {username} parent add vip"))
	require.NoError(t, mw.WriteField("price", "100000"))
	require.NoError(t, mw.WriteField("active", "false"))
	part, err := mw.CreateFormFile("image", "vip.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	product, image, err := decodeProduct(req)
	require.NoError(t, err)
	defer closeUpload(image)

	assert.Equal(t, "VIP", product.Name)
	assert.Equal(t, int64(100000), product.Price)
	assert.False(t, product.Active)
	require.NotNil(t, image)
	assert.Equal(t, "vip.png", image.Filename)
	_, isCloser := image.Reader.(io.Closer)
	assert.True(t, isCloser)
}

func TestDecodeProductRejectsBadPrice(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "VIP"))
	require.NoError(t, mw.WriteField("price", "cheap"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, _, err := decodeProduct(req)
	assert.Error(t, err)
}

func TestCloseUpload(t *testing.T) {
	f := &trackedFile{Reader: strings.NewReader("x")}
	closeUpload(&storage.Upload{Reader: f})
	assert.True(t, f.closed)

	closeUpload(nil)
	closeUpload(&storage.Upload{Reader: strings.NewReader("plain")})
}
