package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pinchtab/todobench/internal/browser"
	"github.com/pinchtab/todobench/internal/config"
	"github.com/pinchtab/todobench/internal/dom"
	"github.com/pinchtab/todobench/internal/suite"
)

// Driver opens a page the suite can run against.
type Driver interface {
	Open(ctx context.Context, url string) (Page, error)
}

// Page is one open document. Its Context must be used for every document
// call; it ends when the ctx given to Open ends.
type Page interface {
	Context() context.Context
	Document() suite.Document
	Info() (browser.TabInfo, error)
	Close() error
}

// chromeDriver opens a fresh Chrome tab per page.
type chromeDriver struct {
	opts       browser.Options
	navTimeout time.Duration
}

func newChromeDriver(cfg config.Config) (*chromeDriver, error) {
	pointer, err := browser.ParsePointer(cfg.Pointer)
	if err != nil {
		return nil, err
	}
	return &chromeDriver{
		opts: browser.Options{
			Headless:   cfg.Headless,
			ChromePath: cfg.ChromePath,
			RemoteURL:  cfg.RemoteURL,
			Pointer:    pointer,
		},
		navTimeout: cfg.StepTimeout * 6,
	}, nil
}

func (d *chromeDriver) Open(ctx context.Context, url string) (Page, error) {
	if url == "" {
		return nil, fmt.Errorf("url required")
	}
	sess, err := browser.NewSession(ctx, d.opts)
	if err != nil {
		return nil, err
	}
	if err := sess.Navigate(url, d.navTimeout); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// simDriver serves in-memory TodoMVC documents. The url is only recorded.
type simDriver struct{}

type simPage struct {
	ctx context.Context
	url string
	doc *dom.Document
	app *dom.TodoApp
}

func (simDriver) Open(ctx context.Context, url string) (Page, error) {
	doc := dom.NewDocument()
	return &simPage{ctx: ctx, url: url, doc: doc, app: dom.MountTodoApp(doc)}, nil
}

func (p *simPage) Context() context.Context { return p.ctx }
func (p *simPage) Document() suite.Document { return p.doc }
func (p *simPage) Close() error             { return nil }

func (p *simPage) Info() (browser.TabInfo, error) {
	return browser.TabInfo{ID: "sim", URL: p.url, Title: "TodoMVC (simulated)"}, nil
}
