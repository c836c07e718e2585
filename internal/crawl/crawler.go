// Package crawl drives a browsing session through a place listing and
// extracts its home details, visitor reviews, first blog review, and photo
// tab into a validated entity graph. Phases run strictly in order on the
// session's single timeline; a phase failure aborts the run.
package crawl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/config"
	"github.com/seoulmaps/placemeta/internal/driver"
	"github.com/seoulmaps/placemeta/internal/model"
	"github.com/seoulmaps/placemeta/internal/validate"
)

// Listing selectors. These track the live page markup and are the piece
// most likely to rot; keeping them in one block makes refresh cheap.
const (
	searchBoxSelector   = "div.input_box"
	searchInputSelector = "div.input_box input"
	entryFrameSelector  = "iframe#entryIframe"

	addressSelector       = "span.LDgIH"
	businessHoursSelector = "span.U7pYf"
	expandHoursSelector   = "a.gKP9i.RMgN0"
	hoursRowSelector      = "div.w9QyJ"
	hoursDaySelector      = "span.A_cdD span.i8cJw"
	hoursTimeSelector     = "div.H3ua4"

	tabSelector        = "div.YYh8o.gHymq a"
	reviewTabLabel     = "리뷰"
	photoTabLabel      = "사진"
	reviewItemSelector = "#_review_list li"

	blogSubTabSelector = "div.GWcCA a"
	blogSubTabLabel    = "블로그 리뷰"
	firstBlogSelector  = "ul li.EblIP a"
	blogFrameSelector  = "iframe#mainFrame"
	blogTitleSelector  = ".se-module.se-module-text.se-title-text"
	blogAuthorSelector = ".link.pcol2"
	blogDateSelector   = ".se_publishDate.pcol2"
	blogTextSelector   = ".se-component.se-text.se-l-default"
	blogImageSelector  = "div.se-component.se-image.se-l-default.__se-component img"

	photoImageSelector = "div.Nd2nM div.wzrbN img"
	scrollScript       = "window.scrollBy(0, window.innerHeight)"
)

// ImageFetcher downloads a batch of image URLs into a directory. Satisfied
// by fetcher.Images; tests substitute a recorder.
type ImageFetcher interface {
	DownloadAll(ctx context.Context, urls []string, dir, prefix string) (int, error)
}

// Crawler extracts one place's entity graph from a live browsing session.
type Crawler struct {
	session driver.Session
	images  ImageFetcher
	cfg     config.CrawlConfig
	dl      config.DownloadConfig
}

// New wires a crawler over an exclusive browsing session.
func New(session driver.Session, images ImageFetcher, cfg config.CrawlConfig, dl config.DownloadConfig) *Crawler {
	return &Crawler{session: session, images: images, cfg: cfg, dl: dl}
}

// Crawl runs the four extraction phases for the named place and returns the
// validated graph. Nothing is persisted here; the caller owns storage.
func (c *Crawler) Crawl(ctx context.Context, placeName string) (*model.Graph, error) {
	page, err := c.session.NewPage(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: open page")
	}

	if err := page.Navigate(ctx, c.cfg.BaseURL); err != nil {
		return nil, eris.Wrap(err, "crawl: open map")
	}
	if err := page.Settle(ctx, c.settle()); err != nil {
		return nil, err
	}

	if err := c.search(ctx, page, placeName); err != nil {
		return nil, err
	}

	entry, err := c.enterListing(ctx, page)
	if err != nil {
		return nil, err
	}

	rawHome, err := c.fetchHome(ctx, entry)
	if err != nil {
		return nil, err
	}
	place, err := validate.Home(rawHome)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: home record")
	}
	place.Name = placeName
	zap.L().Info("crawl: home phase complete",
		zap.String("place", placeName),
		zap.Int("hours_rows", len(place.Hours)))

	parsed, err := c.fetchReviews(ctx, entry)
	if err != nil {
		return nil, err
	}
	reviews, err := validate.Reviews(parsed)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: review records")
	}
	zap.L().Info("crawl: review phase complete",
		zap.String("place", placeName),
		zap.Int("reviews", len(reviews)))

	rawBlog, err := c.fetchBlog(ctx, entry)
	if err != nil {
		return nil, err
	}
	blog, err := validate.Blog(rawBlog)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog record")
	}
	zap.L().Info("crawl: blog phase complete",
		zap.String("place", placeName),
		zap.Bool("found", blog != nil))

	rawPhotos, err := c.fetchPhotos(ctx, entry)
	if err != nil {
		return nil, err
	}
	photos, err := validate.Photos(rawPhotos)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: photo records")
	}
	zap.L().Info("crawl: photo phase complete",
		zap.String("place", placeName),
		zap.Int("photos", len(photos)))

	return &model.Graph{
		Place:   place,
		Reviews: reviews,
		Blog:    blog,
		Photos:  photos,
	}, nil
}

// search types the place name into the map search box and submits it. On a
// fresh load the input may be hidden behind a placeholder box that has to
// be clicked into focus first.
func (c *Crawler) search(ctx context.Context, page driver.Page, placeName string) error {
	input, err := page.Find(ctx, searchInputSelector)
	if errors.Is(err, driver.ErrNotFound) {
		box, boxErr := page.Find(ctx, searchBoxSelector)
		if boxErr != nil {
			return eris.Wrap(boxErr, "crawl: locate search box")
		}
		if clickErr := box.Click(ctx); clickErr != nil {
			return eris.Wrap(clickErr, "crawl: focus search box")
		}
		if waitErr := page.WaitFor(ctx, searchInputSelector, c.waitTimeout()); waitErr != nil {
			return eris.Wrap(waitErr, "crawl: search input")
		}
		input, err = page.Find(ctx, searchInputSelector)
	}
	if err != nil {
		return eris.Wrap(err, "crawl: search input")
	}

	if err := input.Fill(ctx, placeName); err != nil {
		return eris.Wrap(err, "crawl: type query")
	}
	if err := input.Press(ctx, "Enter"); err != nil {
		return eris.Wrap(err, "crawl: submit query")
	}
	return page.Settle(ctx, 2*c.settle())
}

// enterListing waits for the listing frame that search lands on and enters
// it. All four phases run inside this frame.
func (c *Crawler) enterListing(ctx context.Context, page driver.Page) (driver.Page, error) {
	if err := page.WaitFor(ctx, entryFrameSelector, c.entryTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: listing frame")
	}
	frameEl, err := page.Find(ctx, entryFrameSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: listing frame")
	}
	entry, err := frameEl.ContentFrame(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: enter listing frame")
	}
	return entry, nil
}

// clickTab activates the listing tab whose label matches exactly.
func (c *Crawler) clickTab(ctx context.Context, entry driver.Page, label string) error {
	tabs, err := entry.FindAll(ctx, tabSelector)
	if err != nil {
		return eris.Wrapf(err, "crawl: list tabs for %q", label)
	}
	for _, tab := range tabs {
		text, err := tab.TextContent(ctx)
		if err != nil {
			return eris.Wrapf(err, "crawl: read tab label")
		}
		if strings.TrimSpace(text) != label {
			continue
		}
		if err := tab.Click(ctx); err != nil {
			return eris.Wrapf(err, "crawl: open %q tab", label)
		}
		return entry.Settle(ctx, c.settle())
	}
	return eris.Errorf("crawl: tab %q not present", label)
}

func (c *Crawler) settle() time.Duration {
	return time.Duration(c.cfg.SettleMillis) * time.Millisecond
}

func (c *Crawler) waitTimeout() time.Duration {
	return time.Duration(c.cfg.WaitTimeoutSecs) * time.Second
}

func (c *Crawler) entryTimeout() time.Duration {
	return time.Duration(c.cfg.EntryTimeoutSecs) * time.Second
}
