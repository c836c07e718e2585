// Package driver defines the browser-automation boundary consumed by the
// crawl phases. The crawl logic never touches the automation library
// directly; it sees only these interfaces, which a thin adapter implements
// and tests replace with fakes.
package driver

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound reports that a selector matched no element. Callers decide
// whether that is fatal: optional affordances treat it as normal absence.
var ErrNotFound = eris.New("driver: element not found")

// Session owns one exclusive browsing session. Pages created from it share
// navigation state; a session must not be driven concurrently.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one page or embedded content frame.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until the selector matches or the timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Find returns the first match or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	Evaluate(ctx context.Context, script string) (any, error)
	// Settle sleeps for a fixed duration to let UI interactions render.
	Settle(ctx context.Context, d time.Duration) error
}

// Element is a handle to one matched element.
type Element interface {
	// Find returns the first match scoped to this element, or ErrNotFound.
	Find(ctx context.Context, selector string) (Element, error)
	Click(ctx context.Context) error
	Fill(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	TextContent(ctx context.Context) (string, error)
	// GetAttribute returns the attribute value, or "" when absent.
	GetAttribute(ctx context.Context, name string) (string, error)
	Evaluate(ctx context.Context, script string) (any, error)
	// ContentFrame enters the frame embedded by this element.
	ContentFrame(ctx context.Context) (Page, error)
}
