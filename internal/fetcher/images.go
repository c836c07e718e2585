// Package fetcher downloads scraped image URLs to local storage. Downloads
// are side effects of the crawl: a failed URL is logged and skipped, never
// propagated.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Images downloads image URLs through one shared HTTP client with a
// polite global rate limit.
type Images struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewImages creates an image fetcher. rps bounds outbound requests per
// second across all downloads.
func NewImages(timeout time.Duration, rps rate.Limit, burst int) *Images {
	return &Images{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rps, burst),
	}
}

// DownloadAll fetches urls concurrently into dir, naming files
// "<prefix>_<n>.jpg" in input order. Per-URL failures (non-200 status,
// network errors) are logged and skipped; the returned count is the number
// of files written. Only directory creation is a hard error.
func (f *Images) DownloadAll(ctx context.Context, urls []string, dir, prefix string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, eris.Wrapf(err, "fetcher: create %s", dir)
	}

	var g errgroup.Group
	results := make([]bool, len(urls))
	for i, u := range urls {
		g.Go(func() error {
			path := filepath.Join(dir, fmt.Sprintf("%s_%d.jpg", prefix, i+1))
			if err := f.download(ctx, u, path); err != nil {
				zap.L().Warn("fetcher: image download failed",
					zap.String("url", u),
					zap.Error(err),
				)
				return nil
			}
			results[i] = true
			zap.L().Info("fetcher: image downloaded", zap.String("path", path))
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	return n, nil
}

func (f *Images) download(ctx context.Context, url, path string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "fetcher: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "fetcher: build request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "fetcher: get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetcher: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "fetcher: create file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return eris.Wrap(err, "fetcher: write body")
	}
	return nil
}
