package driver

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
)

// Options configures the browsing session.
type Options struct {
	Headless       bool
	UserAgent      string
	Locale         string
	TimezoneID     string
	ViewportWidth  int
	ViewportHeight int
}

type playwrightSession struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
}

// NewPlaywright launches a Chromium session behind the Session interface.
func NewPlaywright(opts Options) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "driver: start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, eris.Wrap(err, "driver: launch browser")
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:   &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight},
		UserAgent:  playwright.String(opts.UserAgent),
		Locale:     playwright.String(opts.Locale),
		TimezoneId: playwright.String(opts.TimezoneID),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, eris.Wrap(err, "driver: new browser context")
	}

	return &playwrightSession{pw: pw, browser: browser, browserCtx: browserCtx}, nil
}

func (s *playwrightSession) NewPage(ctx context.Context) (Page, error) {
	page, err := s.browserCtx.NewPage()
	if err != nil {
		return nil, eris.Wrap(err, "driver: new page")
	}
	return &playwrightPage{page: page}, nil
}

func (s *playwrightSession) Close() error {
	if err := s.browser.Close(); err != nil {
		_ = s.pw.Stop()
		return eris.Wrap(err, "driver: close browser")
	}
	return eris.Wrap(s.pw.Stop(), "driver: stop playwright")
}

// playwrightPage adapts a top-level page.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	_, err := p.page.Goto(url)
	return eris.Wrapf(err, "driver: goto %s", url)
}

func (p *playwrightPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return eris.Wrapf(err, "driver: wait for %q", selector)
}

func (p *playwrightPage) Find(ctx context.Context, selector string) (Element, error) {
	handle, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: query %q", selector)
	}
	if handle == nil {
		return nil, ErrNotFound
	}
	return &playwrightElement{handle: handle}, nil
}

func (p *playwrightPage) FindAll(ctx context.Context, selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: query all %q", selector)
	}
	return wrapHandles(handles), nil
}

func (p *playwrightPage) Evaluate(ctx context.Context, script string) (any, error) {
	v, err := p.page.Evaluate(script)
	return v, eris.Wrap(err, "driver: evaluate")
}

func (p *playwrightPage) Settle(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

// playwrightFrame adapts an embedded content frame to the same interface.
type playwrightFrame struct {
	frame playwright.Frame
}

func (f *playwrightFrame) Navigate(ctx context.Context, url string) error {
	_, err := f.frame.Goto(url)
	return eris.Wrapf(err, "driver: frame goto %s", url)
}

func (f *playwrightFrame) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := f.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return eris.Wrapf(err, "driver: frame wait for %q", selector)
}

func (f *playwrightFrame) Find(ctx context.Context, selector string) (Element, error) {
	handle, err := f.frame.QuerySelector(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: frame query %q", selector)
	}
	if handle == nil {
		return nil, ErrNotFound
	}
	return &playwrightElement{handle: handle}, nil
}

func (f *playwrightFrame) FindAll(ctx context.Context, selector string) ([]Element, error) {
	handles, err := f.frame.QuerySelectorAll(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: frame query all %q", selector)
	}
	return wrapHandles(handles), nil
}

func (f *playwrightFrame) Evaluate(ctx context.Context, script string) (any, error) {
	v, err := f.frame.Evaluate(script)
	return v, eris.Wrap(err, "driver: frame evaluate")
}

func (f *playwrightFrame) Settle(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Find(ctx context.Context, selector string) (Element, error) {
	handle, err := e.handle.QuerySelector(selector)
	if err != nil {
		return nil, eris.Wrapf(err, "driver: element query %q", selector)
	}
	if handle == nil {
		return nil, ErrNotFound
	}
	return &playwrightElement{handle: handle}, nil
}

func (e *playwrightElement) Click(ctx context.Context) error {
	return eris.Wrap(e.handle.Click(), "driver: click")
}

func (e *playwrightElement) Fill(ctx context.Context, text string) error {
	return eris.Wrap(e.handle.Fill(text), "driver: fill")
}

func (e *playwrightElement) Press(ctx context.Context, key string) error {
	return eris.Wrap(e.handle.Press(key), "driver: press")
}

func (e *playwrightElement) TextContent(ctx context.Context) (string, error) {
	text, err := e.handle.TextContent()
	return text, eris.Wrap(err, "driver: text content")
}

func (e *playwrightElement) GetAttribute(ctx context.Context, name string) (string, error) {
	v, err := e.handle.GetAttribute(name)
	return v, eris.Wrapf(err, "driver: attribute %q", name)
}

func (e *playwrightElement) Evaluate(ctx context.Context, script string) (any, error) {
	v, err := e.handle.Evaluate(script)
	return v, eris.Wrap(err, "driver: element evaluate")
}

func (e *playwrightElement) ContentFrame(ctx context.Context) (Page, error) {
	frame, err := e.handle.ContentFrame()
	if err != nil {
		return nil, eris.Wrap(err, "driver: content frame")
	}
	if frame == nil {
		return nil, ErrNotFound
	}
	return &playwrightFrame{frame: frame}, nil
}

func wrapHandles(handles []playwright.ElementHandle) []Element {
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{handle: h})
	}
	return elements
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
