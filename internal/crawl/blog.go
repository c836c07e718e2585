package crawl

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/seoulmaps/placemeta/internal/driver"
)

// invisibleStripper removes format-category runes (zero-width spaces and
// friends) that the blog editor sprinkles through post text.
var invisibleStripper = runes.Remove(runes.In(unicode.Cf))

// fetchBlog opens the blog-review sub-tab, follows the first linked post in
// a fresh page, and scrapes it from the post's embedded frame. A listing
// with no blog reviews yields a nil record, not an error.
func (c *Crawler) fetchBlog(ctx context.Context, entry driver.Page) (map[string]any, error) {
	if err := c.clickTab(ctx, entry, reviewTabLabel); err != nil {
		return nil, err
	}
	if err := c.clickBlogSubTab(ctx, entry); err != nil {
		return nil, err
	}

	first, err := entry.Find(ctx, firstBlogSelector)
	if errors.Is(err, driver.ErrNotFound) {
		zap.L().Info("crawl: no blog reviews for place")
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "crawl: first blog link")
	}
	blogURL, err := first.GetAttribute(ctx, "href")
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog link href")
	}
	if blogURL == "" {
		return nil, eris.New("crawl: first blog link has no href")
	}

	post, err := c.session.NewPage(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: open blog page")
	}
	if err := post.Navigate(ctx, blogURL); err != nil {
		return nil, eris.Wrapf(err, "crawl: open blog post %s", blogURL)
	}
	if err := post.Settle(ctx, 3*c.settle()/2); err != nil {
		return nil, err
	}

	frame, err := c.enterBlogFrame(ctx, post)
	if err != nil {
		return nil, err
	}

	title, err := elementText(ctx, frame, blogTitleSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog title")
	}
	author, err := optionalText(ctx, frame, blogAuthorSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog author")
	}
	date, err := optionalText(ctx, frame, blogDateSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog date")
	}

	content, err := c.blogContent(ctx, frame)
	if err != nil {
		return nil, err
	}
	images, err := c.blogImages(ctx, frame)
	if err != nil {
		return nil, err
	}

	sample := sampleURLs(images, c.dl.BlogSample)
	if len(sample) > 0 {
		saved, err := c.images.DownloadAll(ctx, sample, c.dl.BlogDir, "random_image")
		if err != nil {
			return nil, eris.Wrap(err, "crawl: download blog images")
		}
		zap.L().Info("crawl: blog images downloaded",
			zap.Int("sampled", len(sample)),
			zap.Int("saved", saved))
	}

	return map[string]any{
		"title":    title,
		"author":   author,
		"date":     date,
		"content":  content,
		"blog_url": blogURL,
		"images":   images,
	}, nil
}

func (c *Crawler) clickBlogSubTab(ctx context.Context, entry driver.Page) error {
	links, err := entry.FindAll(ctx, blogSubTabSelector)
	if err != nil {
		return eris.Wrap(err, "crawl: review sub-tabs")
	}
	for _, link := range links {
		text, err := link.TextContent(ctx)
		if err != nil {
			return eris.Wrap(err, "crawl: read sub-tab label")
		}
		if strings.TrimSpace(text) != blogSubTabLabel {
			continue
		}
		if err := link.Click(ctx); err != nil {
			return eris.Wrap(err, "crawl: open blog sub-tab")
		}
		return entry.Settle(ctx, c.settle())
	}
	return eris.New("crawl: blog sub-tab not present")
}

func (c *Crawler) enterBlogFrame(ctx context.Context, post driver.Page) (driver.Page, error) {
	if err := post.WaitFor(ctx, blogFrameSelector, c.entryTimeout()); err != nil {
		return nil, eris.Wrap(err, "crawl: blog frame")
	}
	frameEl, err := post.Find(ctx, blogFrameSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog frame")
	}
	frame, err := frameEl.ContentFrame(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: enter blog frame")
	}
	return frame, nil
}

// blogContent concatenates every text component of the post, with invisible
// format runes stripped out.
func (c *Crawler) blogContent(ctx context.Context, frame driver.Page) (string, error) {
	blocks, err := frame.FindAll(ctx, blogTextSelector)
	if err != nil {
		return "", eris.Wrap(err, "crawl: blog text blocks")
	}
	var parts []string
	for _, block := range blocks {
		text, err := block.TextContent(ctx)
		if err != nil {
			return "", eris.Wrap(err, "crawl: blog text block")
		}
		text = strings.TrimSpace(stripInvisible(text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// blogImages collects the lazy-load source of every image component.
func (c *Crawler) blogImages(ctx context.Context, frame driver.Page) ([]string, error) {
	imgs, err := frame.FindAll(ctx, blogImageSelector)
	if err != nil {
		return nil, eris.Wrap(err, "crawl: blog images")
	}
	var urls []string
	for _, img := range imgs {
		src, err := img.GetAttribute(ctx, "data-lazy-src")
		if err != nil {
			return nil, eris.Wrap(err, "crawl: blog image src")
		}
		if src != "" {
			urls = append(urls, src)
		}
	}
	return urls, nil
}

// optionalText reads trimmed text for a selector that may be absent.
func optionalText(ctx context.Context, page driver.Page, selector string) (string, error) {
	text, err := elementText(ctx, page, selector)
	if errors.Is(err, driver.ErrNotFound) {
		return "", nil
	}
	return text, err
}

func stripInvisible(s string) string {
	out, _, err := transform.String(invisibleStripper, s)
	if err != nil {
		return s
	}
	return out
}

// sampleURLs draws up to n distinct URLs uniformly without replacement,
// preserving nothing of the input order. Fewer candidates than n yields all
// of them.
func sampleURLs(urls []string, n int) []string {
	if n <= 0 || len(urls) == 0 {
		return nil
	}
	shuffled := make([]string, len(urls))
	copy(shuffled, urls)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
