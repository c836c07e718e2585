package crawl

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/driver"
)

// fetchPhotos opens the photo tab and collects the first few images whose
// intrinsic dimensions clear the size floor, scrolling to load more as
// needed. The grid recycles nodes, so candidates are deduplicated by URL,
// and a scroll that stops surfacing new elements ends the walk even when
// the quota is unmet.
func (c *Crawler) fetchPhotos(ctx context.Context, entry driver.Page) (map[string]any, error) {
	if err := c.clickTab(ctx, entry, photoTabLabel); err != nil {
		return nil, err
	}
	if err := entry.WaitFor(ctx, photoImageSelector, c.waitTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: photo grid")
	}

	seen := make(map[string]bool)
	var kept []map[string]any
	lastCount := -1
	stalls := 0

	for len(kept) < c.cfg.PhotoKeep {
		imgs, err := entry.FindAll(ctx, photoImageSelector)
		if err != nil {
			return nil, eris.Wrap(err, "crawl: photo grid")
		}

		for _, img := range imgs {
			if len(kept) >= c.cfg.PhotoKeep {
				break
			}
			src, err := img.GetAttribute(ctx, "src")
			if err != nil {
				return nil, eris.Wrap(err, "crawl: photo src")
			}
			if src == "" || seen[src] {
				continue
			}
			seen[src] = true

			width, err := naturalDimension(ctx, img, "(img) => img.naturalWidth")
			if err != nil {
				return nil, eris.Wrap(err, "crawl: photo width")
			}
			height, err := naturalDimension(ctx, img, "(img) => img.naturalHeight")
			if err != nil {
				return nil, eris.Wrap(err, "crawl: photo height")
			}
			if width < c.cfg.PhotoMinSize || height < c.cfg.PhotoMinSize {
				continue
			}
			kept = append(kept, map[string]any{
				"image_url": src,
				"width":     width,
				"height":    height,
			})
		}

		if len(kept) >= c.cfg.PhotoKeep {
			break
		}
		if len(imgs) == lastCount {
			stalls++
			if stalls >= c.cfg.MaxScrollStalls {
				zap.L().Warn("crawl: photo grid exhausted before quota",
					zap.Int("kept", len(kept)),
					zap.Int("quota", c.cfg.PhotoKeep))
				break
			}
		} else {
			stalls = 0
		}
		lastCount = len(imgs)

		if _, err := entry.Evaluate(ctx, scrollScript); err != nil {
			return nil, eris.Wrap(err, "crawl: scroll photo grid")
		}
		if err := entry.Settle(ctx, c.settle()); err != nil {
			return nil, err
		}
	}

	if len(kept) > 0 {
		urls := make([]string, 0, len(kept))
		for _, rec := range kept {
			urls = append(urls, rec["image_url"].(string))
		}
		saved, err := c.images.DownloadAll(ctx, urls, c.dl.PhotoDir, "tab_photo_image")
		if err != nil {
			return nil, eris.Wrap(err, "crawl: download tab photos")
		}
		zap.L().Info("crawl: tab photos downloaded",
			zap.Int("kept", len(kept)),
			zap.Int("saved", saved))
	}

	return map[string]any{"images": kept}, nil
}

// naturalDimension evaluates an intrinsic-size expression on an image
// element. The automation layer hands numbers back as float64 or int
// depending on the value, so both are accepted.
func naturalDimension(ctx context.Context, img driver.Element, script string) (int, error) {
	v, err := img.Evaluate(ctx, script)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, eris.Errorf("crawl: unexpected dimension type %T", v)
	}
}
