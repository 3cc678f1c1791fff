package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/xhad/ezodus/internal/types"
	"github.com/xhad/ezodus/pkg/config"
	"github.com/xhad/ezodus/pkg/llm"
	"github.com/xhad/ezodus/pkg/processor"
	"github.com/xhad/ezodus/pkg/scraper"
)

// NewFromConfig assembles a Service from cfg. Missing credentials are not an
// error here: the service is built unconfigured and reports it per request.
// Credentials that are present but unusable are.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var fetcher types.Fetcher
	if cfg.Scraper.Render {
		fetcher = scraper.NewRenderer(scraper.RenderConfig{
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.Scraper.Timeout,
			ExecPath:  cfg.Scraper.ChromePath,
		})
	} else {
		fetcher = scraper.NewWithConfig(scraper.ScraperConfig{
			UserAgent:    cfg.Scraper.UserAgent,
			Timeout:      cfg.Scraper.Timeout,
			MaxBodyBytes: cfg.Scraper.MaxBodyBytes,
		})
	}

	tiers := scraper.DefaultTiers()
	if cfg.Scraper.Readability {
		tiers = append(tiers, scraper.ReadabilityTier())
	}

	svc := Config{
		Fetcher:     fetcher,
		Extractor:   scraper.NewExtractor(tiers...),
		Processor:   processor.NewWithConfig(processor.ProcessorConfig{MaxChars: cfg.Scraper.MaxChars}),
		Logger:      logger,
		ImageCount:  cfg.Post.ImageCount,
		DefaultTone: cfg.Post.DefaultTone,
	}

	mode, err := cfg.Credentials()
	if errors.Is(err, config.ErrMissingCredentials) {
		logger.Warn("no Gemini credentials configured; generation requests will fail")
		return NewWithConfig(svc), nil
	}

	creds := llm.Credentials{
		APIKey:      cfg.Gemini.APIKey,
		ClientEmail: cfg.Gemini.ClientEmail,
		PrivateKey:  cfg.Gemini.PrivateKey,
	}
	if cfg.Gemini.APIKey == "" && cfg.Gemini.CredentialsFile != "" {
		creds.CredentialsJSON, err = os.ReadFile(cfg.Gemini.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	}

	auth, err := llm.NewAuthorizer(creds, llm.ServiceAccountConfig{
		TokenURL:     cfg.Gemini.TokenURL,
		QuotaProject: cfg.Gemini.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s credentials: %w", mode, err)
	}

	text, err := llm.NewWithConfig(ctx, llm.ChatConfig{
		ClientConfig: llm.ClientConfig{
			BaseURL:   cfg.Gemini.BaseURL,
			Timeout:   cfg.Gemini.Timeout,
			RateLimit: cfg.Gemini.RateLimit,
		},
		Model:       cfg.Gemini.TextModel,
		Temperature: cfg.Gemini.Temperature,
		MaxTokens:   cfg.Gemini.MaxTokens,
	}, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text model: %w", err)
	}

	images, err := llm.NewImagen(ctx, llm.ImageConfig{
		ClientConfig: llm.ClientConfig{
			BaseURL:   cfg.Gemini.BaseURL,
			Timeout:   cfg.Gemini.ImageTimeout,
			RateLimit: cfg.Gemini.RateLimit,
		},
		Model:       cfg.Gemini.ImageModel,
		AspectRatio: cfg.Post.AspectRatio,
		Project:     cfg.Gemini.ProjectID,
		Location:    cfg.Gemini.Location,
	}, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image model: %w", err)
	}

	svc.Text = text
	svc.Images = images
	logger.Info("generative models ready", "auth", mode.String(), "text_model", cfg.Gemini.TextModel, "image_model", cfg.Gemini.ImageModel)

	return NewWithConfig(svc), nil
}
