package crawl

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/driver"
)

// fetchHome scrapes the listing's home tab: address, the business-hours
// summary line, and the expanded per-day hours table. The expand affordance
// is absent for places with single-line hours, so its absence is normal.
func (c *Crawler) fetchHome(ctx context.Context, entry driver.Page) (map[string]any, error) {
	if err := entry.WaitFor(ctx, addressSelector, c.waitTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: address")
	}
	address, err := elementText(ctx, entry, addressSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: address")
	}

	if err := entry.WaitFor(ctx, businessHoursSelector, c.waitTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: business hours")
	}
	businessHours, err := elementText(ctx, entry, businessHoursSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: business hours")
	}

	if err := c.expandHours(ctx, entry); err != nil {
		return nil, err
	}

	rows, err := entry.FindAll(ctx, hoursRowSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: hours rows")
	}
	hours := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		day, err := childText(ctx, row, hoursDaySelector)
		if err != nil {
			return nil, eris.Wrap(err, "crawl: hours day")
		}
		hoursText, err := childText(ctx, row, hoursTimeSelector)
		if err != nil {
			return nil, eris.Wrap(err, "crawl: hours time")
		}
		if day == "" || hoursText == "" {
			continue
		}
		hours = append(hours, map[string]any{"day": day, "time": hoursText})
	}

	return map[string]any{
		"address":        address,
		"business_hours": businessHours,
		"hours":          hours,
	}, nil
}

// expandHours clicks the hours fold open when the affordance exists.
func (c *Crawler) expandHours(ctx context.Context, entry driver.Page) error {
	expand, err := entry.Find(ctx, expandHoursSelector)
	if errors.Is(err, driver.ErrNotFound) {
		zap.L().Debug("crawl: hours already expanded")
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "crawl: hours fold")
	}
	if err := expand.Click(ctx); err != nil {
		return eris.Wrap(err, "crawl: expand hours")
	}
	return entry.Settle(ctx, c.settle()/2)
}

// elementText finds the selector's first match and returns its trimmed text.
func elementText(ctx context.Context, page driver.Page, selector string) (string, error) {
	el, err := page.Find(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := el.TextContent(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// childText resolves a selector under a parent element. A missing child
// yields an empty string rather than an error; row layouts vary.
func childText(ctx context.Context, parent driver.Element, selector string) (string, error) {
	el, err := parent.Find(ctx, selector)
	if errors.Is(err, driver.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	text, err := el.TextContent(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
