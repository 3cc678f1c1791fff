package llm

import (
	"net/http"
	"time"

	"github.com/xhad/ezodus/internal/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP side of the generative API clients.
type ClientConfig struct {
	// BaseURL overrides the API host. Empty means the provider default.
	BaseURL string
	// Timeout bounds each call, including waiting on the rate limiter.
	Timeout time.Duration
	// RateLimit is the number of calls per second allowed; zero disables it.
	RateLimit  float64
	HTTPClient *http.Client
}

// authTransport authorizes and paces every request the provider SDKs send.
type authTransport struct {
	auth    types.Authorizer
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			closeBody(req)
			return nil, err
		}
	}

	req = req.Clone(ctx)
	if err := t.auth.Authorize(ctx, req); err != nil {
		closeBody(req)
		return nil, err
	}
	return t.base.RoundTrip(req)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

// newHTTPClient returns the client handed to the provider SDKs. The SDKs
// never see credentials; auth is applied here on the way out.
func newHTTPClient(config ClientConfig, auth types.Authorizer) *http.Client {
	base := http.RoundTripper(otelhttp.NewTransport(http.DefaultTransport))
	if config.HTTPClient != nil && config.HTTPClient.Transport != nil {
		base = config.HTTPClient.Transport
	}

	transport := &authTransport{auth: auth, base: base}
	if config.RateLimit > 0 {
		transport.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return &http.Client{Transport: transport, Timeout: config.Timeout}
}
