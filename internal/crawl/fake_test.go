package crawl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/driver"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeElement is a scripted DOM node for driving the crawler in tests.
type fakeElement struct {
	text     string
	attrs    map[string]string
	eval     map[string]any
	children map[string]*fakeElement
	frame    *fakePage
	clicks   int
	onClick  func()
	filled   string
	pressed  string
}

func (e *fakeElement) Find(ctx context.Context, selector string) (driver.Element, error) {
	child, ok := e.children[selector]
	if !ok {
		return nil, driver.ErrNotFound
	}
	return child, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.clicks++
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) Fill(ctx context.Context, text string) error {
	e.filled = text
	return nil
}

func (e *fakeElement) Press(ctx context.Context, key string) error {
	e.pressed = key
	return nil
}

func (e *fakeElement) TextContent(ctx context.Context) (string, error) {
	return e.text, nil
}

func (e *fakeElement) GetAttribute(ctx context.Context, name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Evaluate(ctx context.Context, script string) (any, error) {
	return e.eval[script], nil
}

func (e *fakeElement) ContentFrame(ctx context.Context) (driver.Page, error) {
	if e.frame == nil {
		return nil, driver.ErrNotFound
	}
	return e.frame, nil
}

// fakePage maps selectors to scripted nodes. onScroll lets a test grow or
// freeze the photo grid between scroll rounds.
type fakePage struct {
	elements  map[string][]*fakeElement
	waitErr   map[string]error
	navigated []string
	scrolls   int
	onScroll  func(p *fakePage)
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return p.waitErr[selector]
}

func (p *fakePage) Find(ctx context.Context, selector string) (driver.Element, error) {
	els := p.elements[selector]
	if len(els) == 0 {
		return nil, driver.ErrNotFound
	}
	return els[0], nil
}

func (p *fakePage) FindAll(ctx context.Context, selector string) ([]driver.Element, error) {
	els := p.elements[selector]
	out := make([]driver.Element, 0, len(els))
	for _, el := range els {
		out = append(out, el)
	}
	return out, nil
}

func (p *fakePage) Evaluate(ctx context.Context, script string) (any, error) {
	if script == scrollScript {
		p.scrolls++
		if p.onScroll != nil {
			p.onScroll(p)
		}
	}
	return nil, nil
}

func (p *fakePage) Settle(ctx context.Context, d time.Duration) error {
	return nil
}

// fakeSession hands out scripted pages in order.
type fakeSession struct {
	pages []*fakePage
	next  int
}

func (s *fakeSession) NewPage(ctx context.Context) (driver.Page, error) {
	p := s.pages[s.next]
	s.next++
	return p, nil
}

func (s *fakeSession) Close() error { return nil }

type downloadCall struct {
	urls   []string
	dir    string
	prefix string
}

// fakeFetcher records download batches instead of touching the network.
type fakeFetcher struct {
	calls []downloadCall
}

func (f *fakeFetcher) DownloadAll(ctx context.Context, urls []string, dir, prefix string) (int, error) {
	f.calls = append(f.calls, downloadCall{urls: urls, dir: dir, prefix: prefix})
	return len(urls), nil
}

func textEl(text string) *fakeElement {
	return &fakeElement{text: text}
}

func hoursRow(day, hours string) *fakeElement {
	return &fakeElement{children: map[string]*fakeElement{
		hoursDaySelector:  textEl(day),
		hoursTimeSelector: textEl(hours),
	}}
}

func photoEl(src string, width, height int) *fakeElement {
	return &fakeElement{
		attrs: map[string]string{"src": src},
		eval: map[string]any{
			"(img) => img.naturalWidth":  width,
			"(img) => img.naturalHeight": height,
		},
	}
}
