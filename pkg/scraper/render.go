package scraper

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/xhad/ezodus/internal/models"
)

type RenderConfig struct {
	UserAgent string
	Timeout   time.Duration
	// ExecPath points at a Chrome or Chromium binary. Empty means the
	// default lookup done by chromedp.
	ExecPath string
}

// Renderer fetches pages through a headless browser so that content added
// by client-side scripts is present in the returned markup. Each call starts
// and stops its own browser. A non-2xx status on the main document fails the
// fetch the same way it does for Scraper.
type Renderer struct {
	config RenderConfig
}

func NewRenderer(config RenderConfig) *Renderer {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Renderer{config: config}
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(r.config.UserAgent),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if r.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ExecPath))
	}
	return opts
}

func (r *Renderer) Fetch(ctx context.Context, url string) (*models.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	resp, err := chromedp.RunResponse(taskCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		return nil, &FetchError{URL: url, StatusCode: int(resp.Status)}
	}

	var html, location string
	err = chromedp.Run(taskCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if location == "" {
		location = url
	}

	return &models.Page{
		URL:         location,
		ContentType: "text/html; charset=utf-8",
		Body:        html,
	}, nil
}
