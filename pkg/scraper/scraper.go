package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xhad/ezodus/internal/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent is sent so that sites serve the same markup they would
// serve a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type ScraperConfig struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// FetchError reports a page that could not be retrieved. StatusCode is zero
// when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: received status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Scraper fetches a single page over HTTP(S). It never retries.
type Scraper struct {
	config ScraperConfig
	client *http.Client
}

func NewWithConfig(config ScraperConfig) *Scraper {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 10 << 20
	}
	if config.Transport == nil {
		config.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
	}
}

func New() *Scraper {
	return NewWithConfig(ScraperConfig{})
}

// Fetch retrieves url and returns its body decoded to UTF-8.
func (s *Scraper) Fetch(ctx context.Context, url string) (*models.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	reader, err := charset.NewReader(io.LimitReader(resp.Body, s.config.MaxBodyBytes), contentType)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return &models.Page{
		URL:         resp.Request.URL.String(),
		ContentType: contentType,
		Body:        string(body),
	}, nil
}
