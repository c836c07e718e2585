package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestFetcher() *Images {
	return NewImages(5*time.Second, rate.Inf, 1)
}

func TestDownloadAll_WritesSequentialFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	urls := []string{srv.URL + "/a.jpg", srv.URL + "/b.jpg", srv.URL + "/c.jpg"}

	n, err := newTestFetcher().DownloadAll(context.Background(), urls, dir, "tab_photo_image")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for i := 1; i <= 3; i++ {
		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("tab_photo_image_%d.jpg", i)))
		require.NoError(t, err)
		assert.Equal(t, "jpegbytes", string(data))
	}
}

func TestDownloadAll_SkipsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	urls := []string{srv.URL + "/missing.jpg", srv.URL + "/there.jpg"}

	n, err := newTestFetcher().DownloadAll(context.Background(), urls, dir, "random_image")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, statErr := os.Stat(filepath.Join(dir, "random_image_1.jpg"))
	assert.True(t, os.IsNotExist(statErr), "non-200 body must not be written")
	_, statErr = os.Stat(filepath.Join(dir, "random_image_2.jpg"))
	assert.NoError(t, statErr)
}

func TestDownloadAll_EmptyInput(t *testing.T) {
	n, err := newTestFetcher().DownloadAll(context.Background(), nil, t.TempDir(), "x")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDownloadAll_UnreachableHostIsSoft(t *testing.T) {
	dir := t.TempDir()
	n, err := newTestFetcher().DownloadAll(context.Background(),
		[]string{"http://127.0.0.1:1/nope.jpg"}, dir, "x")
	require.NoError(t, err)
	assert.Zero(t, n)
}
