package crawl

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/seoulmaps/placemeta/internal/driver"
	"github.com/seoulmaps/placemeta/internal/model"
	"github.com/seoulmaps/placemeta/internal/parse"
)

// fetchReviews opens the review tab and parses the first few visitor review
// cards. Each card arrives as one flattened text blob; parse.Review carries
// the line heuristics that pull fields back out of it.
func (c *Crawler) fetchReviews(ctx context.Context, entry driver.Page) ([]model.Review, error) {
	if err := c.clickTab(ctx, entry, reviewTabLabel); err != nil {
		return nil, err
	}
	if err := entry.WaitFor(ctx, reviewItemSelector, c.waitTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: review list")
	}

	items, err := entry.FindAll(ctx, reviewItemSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: review list")
	}
	if len(items) > c.cfg.ReviewLimit {
		items = items[:c.cfg.ReviewLimit]
	}

	reviews := make([]model.Review, 0, len(items))
	for i, item := range items {
		raw, err := item.TextContent(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "crawl: review card %d", i)
		}
		reviews = append(reviews, parse.Review(raw))
	}
	return reviews, nil
}
