package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xhad/ezodus/internal/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScopes are requested for service-account tokens.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/generative-language",
}

// ErrNoCredentials is returned when neither an API key nor a complete
// service-account identity is configured.
var ErrNoCredentials = errors.New("no generative API credentials configured")

// Credentials holds whatever authentication material is configured.
type Credentials struct {
	APIKey      string
	ClientEmail string
	PrivateKey  string
	// CredentialsJSON is the contents of a service account key file.
	CredentialsJSON []byte
}

// NewAuthorizer picks the API key when one is set, then a service account
// from a key file or from its email and private key, and fails with
// ErrNoCredentials otherwise.
func NewAuthorizer(creds Credentials, config ServiceAccountConfig) (types.Authorizer, error) {
	switch {
	case creds.APIKey != "":
		return APIKeyAuthorizer{Key: creds.APIKey}, nil
	case len(creds.CredentialsJSON) > 0:
		config.CredentialsJSON = creds.CredentialsJSON
		return NewServiceAccountAuthorizer(config)
	case creds.ClientEmail != "" && creds.PrivateKey != "":
		config.ClientEmail = creds.ClientEmail
		config.PrivateKey = creds.PrivateKey
		return NewServiceAccountAuthorizer(config)
	default:
		return nil, ErrNoCredentials
	}
}

// APIKeyAuthorizer passes the key as the "key" query parameter.
type APIKeyAuthorizer struct {
	Key string
}

func (a APIKeyAuthorizer) Authorize(_ context.Context, req *http.Request) error {
	q := req.URL.Query()
	q.Set("key", a.Key)
	req.URL.RawQuery = q.Encode()
	return nil
}

type ServiceAccountConfig struct {
	ClientEmail string
	// PrivateKey is the PEM encoded RSA key of the service account.
	PrivateKey string
	// CredentialsJSON replaces ClientEmail and PrivateKey when set.
	CredentialsJSON []byte
	// TokenURL overrides the token endpoint named by the credentials.
	TokenURL string
	Scopes   []string
	// QuotaProject, when set, is billed for the calls.
	QuotaProject string
	HTTPClient   *http.Client
}

// ServiceAccountAuthorizer sends an OAuth access token obtained with the
// JWT bearer grant. Tokens are cached by the token source and refreshed
// shortly before they expire.
type ServiceAccountAuthorizer struct {
	email        string
	credentials  []byte
	quotaProject string
	source       oauth2.TokenSource
}

type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri,omitempty"`
}

func NewServiceAccountAuthorizer(config ServiceAccountConfig) (*ServiceAccountAuthorizer, error) {
	data := config.CredentialsJSON
	if len(data) == 0 {
		if config.ClientEmail == "" {
			return nil, errors.New("service account client email is required")
		}
		var err error
		data, err = json.Marshal(serviceAccountKey{
			Type:        "service_account",
			ClientEmail: config.ClientEmail,
			PrivateKey:  config.PrivateKey,
			TokenURI:    config.TokenURL,
		})
		if err != nil {
			return nil, fmt.Errorf("encode service account credentials: %w", err)
		}
	}
	if len(config.Scopes) == 0 {
		config.Scopes = DefaultScopes
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, config.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	if jwtConfig.Email == "" {
		return nil, errors.New("service account client email is required")
	}
	// The token source only parses the key on first use.
	if _, err := jwt.ParseRSAPrivateKeyFromPEM(jwtConfig.PrivateKey); err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}
	if config.TokenURL != "" {
		jwtConfig.TokenURL = config.TokenURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)

	return &ServiceAccountAuthorizer{
		email:        jwtConfig.Email,
		credentials:  data,
		quotaProject: config.QuotaProject,
		source:       jwtConfig.TokenSource(ctx),
	}, nil
}

// Email is the service account identity.
func (a *ServiceAccountAuthorizer) Email() string { return a.email }

func (a *ServiceAccountAuthorizer) Authorize(_ context.Context, req *http.Request) error {
	token, err := a.source.Token()
	if err != nil {
		return tokenError(err)
	}
	token.SetAuthHeader(req)
	if a.quotaProject != "" {
		req.Header.Set("x-goog-user-project", a.quotaProject)
	}
	return nil
}

func tokenError(err error) error {
	var retrieve *oauth2.RetrieveError
	if !errors.As(err, &retrieve) {
		return &UpstreamError{Service: "oauth", Err: err}
	}
	upstream := &UpstreamError{Service: "oauth", Message: retrieve.ErrorDescription, Err: err}
	if upstream.Message == "" {
		upstream.Message = retrieve.ErrorCode
	}
	if retrieve.Response != nil {
		upstream.StatusCode = retrieve.Response.StatusCode
	}
	return upstream
}
