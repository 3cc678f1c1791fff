package types

import (
	"context"
	"net/http"

	"github.com/xhad/ezodus/internal/models"
)

// Core interfaces

// Fetcher retrieves the raw content of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
}

// ImageGenerator produces images conditioned on a prompt.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, count int) ([]models.Image, error)
}

// Authorizer attaches upstream credentials to an outgoing request.
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
}
