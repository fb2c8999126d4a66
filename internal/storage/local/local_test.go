package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yosefkovan/storefront/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), "/images")
	require.NoError(t, err)
	return s
}

func TestUploadAndGetURL(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	result, err := s.Upload(ctx, &storage.UploadInput{
		Key:         "products/prod-1/lamp.jpg",
		ContentType: "image/jpeg",
		Size:        9,
		Data:        strings.NewReader("jpegbytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, "products/prod-1/lamp.jpg", result.Key)
	assert.Equal(t, "/images/products/prod-1/lamp.jpg", result.URL)

	data, err := os.ReadFile(filepath.Join(s.Root(), "products", "prod-1", "lamp.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	url, err := s.GetURL(ctx, "products/prod-1/lamp.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/images/products/prod-1/lamp.jpg", url)
}

func TestUploadNeutralizesPathEscape(t *testing.T) {
	s := newTestStorage(t)

	// A key trying to climb out of the root is confined inside it.
	_, err := s.Upload(context.Background(), &storage.UploadInput{
		Key:         "../outside.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Data:        strings.NewReader("data"),
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(s.Root(), "outside.jpg"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(filepath.Dir(s.Root()), "outside.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, &storage.UploadInput{
		Key:         "products/prod-1/lamp.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Data:        strings.NewReader("data"),
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "products/prod-1/lamp.jpg"))

	_, err = os.Stat(filepath.Join(s.Root(), "products", "prod-1", "lamp.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	s := newTestStorage(t)

	assert.NoError(t, s.Delete(context.Background(), "products/nothing.jpg"))
}
