package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/auth/credentials"
	"github.com/xhad/ezodus/internal/models"
	"github.com/xhad/ezodus/internal/types"
	"google.golang.org/genai"
)

const (
	DefaultImageModel    = "imagen-3.0-generate-002"
	DefaultImageTimeout  = 60 * time.Second
	DefaultImageLocation = "us-central1"
)

type ImageConfig struct {
	ClientConfig
	Model       string
	AspectRatio string
	// Project and Location pick the Vertex AI endpoint used with service
	// account credentials. API keys go to the Gemini API instead.
	Project  string
	Location string
}

// Imagen generates images through the genai Models service.
type Imagen struct {
	config ImageConfig
	client *genai.Client
}

var _ types.ImageGenerator = (*Imagen)(nil)

func NewImagen(ctx context.Context, config ImageConfig, auth types.Authorizer) (*Imagen, error) {
	if auth == nil {
		return nil, ErrNoCredentials
	}
	if config.Model == "" {
		config.Model = DefaultImageModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultImageTimeout
	}
	if config.Location == "" {
		config.Location = DefaultImageLocation
	}

	cc := &genai.ClientConfig{HTTPClient: newHTTPClient(config.ClientConfig, auth)}
	switch a := auth.(type) {
	case APIKeyAuthorizer:
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = a.Key
		cc.HTTPOptions.BaseURL = config.BaseURL
	case *ServiceAccountAuthorizer:
		if config.Project == "" {
			return nil, errors.New("a project ID is required for image generation with a service account")
		}
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: a.credentials,
			Scopes:          DefaultScopes,
		})
		if err != nil {
			return nil, fmt.Errorf("load service account credentials: %w", err)
		}
		cc.Backend = genai.BackendVertexAI
		cc.Credentials = creds
		cc.Project = config.Project
		cc.Location = config.Location
	default:
		return nil, fmt.Errorf("unsupported authorizer %T", auth)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Imagen{config: config, client: client}, nil
}

// GenerateImages asks for count images. The API may return fewer than
// requested when some are filtered, but never zero on success.
func (m *Imagen) GenerateImages(ctx context.Context, prompt string, count int) ([]models.Image, error) {
	if count < 1 {
		count = 1
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	resp, err := m.client.Models.GenerateImages(ctx, m.config.Model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		AspectRatio:    m.config.AspectRatio,
	})
	if err != nil {
		return nil, AsUpstream("imagen", err)
	}

	images := make([]models.Image, 0, len(resp.GeneratedImages))
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mime := generated.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		images = append(images, models.Image{MIMEType: mime, Data: generated.Image.ImageBytes})
	}
	if len(images) == 0 {
		return nil, &UpstreamError{Service: "imagen", Message: "no images returned"}
	}
	return images, nil
}
