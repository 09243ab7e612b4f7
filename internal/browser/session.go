// Package browser drives Chrome over the DevTools protocol with chromedp and
// exposes the loaded page as a suite.Document.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/pinchtab/todobench/internal/logging"
	"github.com/pinchtab/todobench/internal/suite"
)

// Options configures how a Session reaches a browser.
type Options struct {
	Headless   bool
	ChromePath string
	// RemoteURL connects to an already running browser (ws://host:port/...)
	// instead of launching one.
	RemoteURL string
	Pointer   Pointer
	Logger    *slog.Logger
}

// TabInfo describes the tab a session drives.
type TabInfo struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Session is one browser tab.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	doc    *Document
	logger *slog.Logger
}

// NewSession launches (or connects to) a browser and opens a tab. The
// session lives until Close or until parent is done.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(parent, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
		)
		if opts.ChromePath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.ChromePath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(parent, execOpts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "src", "chromedp")
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...), "src", "chromedp")
		}),
	)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	logger.Info("browser session started", "remote", opts.RemoteURL != "", "headless", opts.Headless)
	return &Session{
		ctx:    tabCtx,
		cancel: cancel,
		doc:    NewDocument(opts.Pointer),
		logger: logger,
	}, nil
}

// Context is the chromedp context of the tab. Contexts handed to the
// document must derive from it.
func (s *Session) Context() context.Context { return s.ctx }

// Document returns the page as a suite.Document.
func (s *Session) Document() suite.Document { return s.doc }

// Navigate loads url and waits for the body to be ready.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	s.logger.Info("page loaded", "url", url, "dur", time.Since(start))
	return nil
}

// Info reports the tab's target ID, URL and title.
func (s *Session) Info() (TabInfo, error) {
	var info TabInfo
	if c := chromedp.FromContext(s.ctx); c != nil && c.Target != nil {
		info.ID = string(c.Target.TargetID)
	}
	err := chromedp.Run(s.ctx,
		chromedp.Location(&info.URL),
		chromedp.Title(&info.Title),
	)
	return info, err
}

// Close releases page handles and shuts the tab and browser down.
func (s *Session) Close() error {
	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return runtime.ReleaseObjectGroup(objectGroup).Do(ctx)
		}),
	)
	s.cancel()
	return err
}
