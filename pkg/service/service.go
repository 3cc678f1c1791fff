package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/xhad/ezodus/internal/models"
	"github.com/xhad/ezodus/internal/types"
	"github.com/xhad/ezodus/pkg/llm"
	"github.com/xhad/ezodus/pkg/processor"
	"github.com/xhad/ezodus/pkg/scraper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultImageCount  = 4
	DefaultTone        = "Friendly, modern, and bold"
	defaultPostExcerpt = 1000
)

var tracer = otel.Tracer("github.com/xhad/ezodus/pkg/service")

// Config wires the collaborators of a Service. Text and Images may be nil
// when no credentials are configured; every request then fails with
// ErrNotConfigured before any outbound call.
type Config struct {
	Fetcher   types.Fetcher
	Extractor *scraper.Extractor
	Processor processor.Processor
	Text      llms.Model
	Images    types.ImageGenerator
	Logger    *slog.Logger

	ImageCount  int
	DefaultTone string
	// PostExcerpt caps the generated post text carried into the image prompt.
	PostExcerpt int
}

// Service runs the brand-voice and post-generation flows. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	config Config
}

func NewWithConfig(config Config) *Service {
	if config.Extractor == nil {
		config.Extractor = scraper.NewExtractor()
	}
	if config.Processor.MaxChars() == 0 {
		config.Processor = processor.NewWithConfig(processor.ProcessorConfig{})
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.ImageCount <= 0 {
		config.ImageCount = DefaultImageCount
	}
	if strings.TrimSpace(config.DefaultTone) == "" {
		config.DefaultTone = DefaultTone
	}
	if config.PostExcerpt <= 0 {
		config.PostExcerpt = defaultPostExcerpt
	}

	return &Service{config: config}
}

// Configured reports whether generative calls can be made.
func (s *Service) Configured() bool {
	return s.config.Text != nil && s.config.Images != nil
}

// AnalyzeBrandVoice describes the voice of the page at req.URL, or of
// req.Text when it is set.
func (s *Service) AnalyzeBrandVoice(ctx context.Context, req models.ScrapeRequest) (*models.BrandVoiceResult, error) {
	ctx, span := tracer.Start(ctx, "service.AnalyzeBrandVoice")
	defer span.End()

	text := strings.TrimSpace(req.Text)
	target := strings.TrimSpace(req.URL)

	if text == "" {
		if target == "" {
			return nil, fail(span, &InputError{Field: "url", Message: MsgURLRequired})
		}
		if !validURL(target) {
			return nil, fail(span, &InputError{Field: "url", Message: MsgInvalidURL})
		}
	}
	if s.config.Text == nil {
		return nil, fail(span, ErrNotConfigured)
	}

	var extracted string
	if text != "" {
		span.SetAttributes(attribute.String("input.kind", "text"))
		extracted = s.config.Processor.Process([]string{text})
	} else {
		target = scraper.NormalizeURL(target)
		span.SetAttributes(attribute.String("input.kind", "url"), attribute.String("page.url", target))

		var err error
		extracted, err = s.extract(ctx, target)
		if err != nil {
			return nil, fail(span, err)
		}
	}
	if extracted == "" {
		return nil, fail(span, ErrExtractionEmpty)
	}
	span.SetAttributes(attribute.Int("text.chars", len([]rune(extracted))))

	prompt, err := llm.BrandVoicePrompt(extracted)
	if err != nil {
		return nil, fail(span, fmt.Errorf("build brand voice prompt: %w", err))
	}

	voice, err := llms.GenerateFromSinglePrompt(ctx, s.config.Text, prompt)
	if err != nil {
		return nil, fail(span, fmt.Errorf("generate brand voice: %w", llm.AsUpstream("gemini", err)))
	}
	if strings.TrimSpace(voice) == "" {
		return nil, fail(span, errors.New("generate brand voice: empty analysis"))
	}

	return &models.BrandVoiceResult{Success: true, BrandVoice: voice}, nil
}

func (s *Service) extract(ctx context.Context, target string) (string, error) {
	ctx, span := tracer.Start(ctx, "service.extract")
	defer span.End()

	if s.config.Fetcher == nil {
		return "", fail(span, errors.New("no page fetcher configured"))
	}

	page, err := s.config.Fetcher.Fetch(ctx, target)
	if err != nil {
		return "", fail(span, fmt.Errorf("fetch page: %w", err))
	}

	extraction := s.config.Extractor.ExtractHTML(page.Body, page.URL)
	tiers := make([]string, 0, len(extraction.Fragments))
	for _, f := range extraction.Fragments {
		if len(tiers) == 0 || tiers[len(tiers)-1] != f.Tier {
			tiers = append(tiers, f.Tier)
		}
	}
	span.SetAttributes(attribute.StringSlice("extract.tiers", tiers), attribute.Int("extract.fragments", len(extraction.Fragments)))
	s.config.Logger.DebugContext(ctx, "extracted page text", "url", page.URL, "tiers", tiers, "fragments", len(extraction.Fragments))

	return s.config.Processor.Process(extraction.Texts()), nil
}

// GeneratePost writes a post about req.Topic in req.BrandVoice, falling back
// to the default tone, and illustrates it. Images are only requested after
// the text succeeds.
func (s *Service) GeneratePost(ctx context.Context, req models.PostRequest) (*models.PostResult, error) {
	ctx, span := tracer.Start(ctx, "service.GeneratePost")
	defer span.End()

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fail(span, &InputError{Field: "topic", Message: MsgTopicRequired})
	}
	tone := strings.TrimSpace(req.BrandVoice)
	if tone == "" {
		tone = s.config.DefaultTone
	}
	if !s.Configured() {
		return nil, fail(span, ErrNotConfigured)
	}
	span.SetAttributes(attribute.Bool("tone.default", tone == s.config.DefaultTone))

	prompt, err := llm.PostPrompt(topic, tone)
	if err != nil {
		return nil, fail(span, fmt.Errorf("build post prompt: %w", err))
	}
	text, err := llms.GenerateFromSinglePrompt(ctx, s.config.Text, prompt)
	if err != nil {
		return nil, fail(span, fmt.Errorf("generate post text: %w", llm.AsUpstream("gemini", err)))
	}
	if strings.TrimSpace(text) == "" {
		return nil, fail(span, errors.New("generate post text: empty post"))
	}

	imagePrompt, err := llm.ImagePrompt(topic, tone, processor.Truncate(text, s.config.PostExcerpt))
	if err != nil {
		return nil, fail(span, fmt.Errorf("build image prompt: %w", err))
	}
	images, err := s.config.Images.GenerateImages(ctx, imagePrompt, s.config.ImageCount)
	if err != nil {
		return nil, fail(span, fmt.Errorf("generate images: %w", llm.AsUpstream("imagen", err)))
	}
	if len(images) == 0 {
		return nil, fail(span, errors.New("generate images: no images"))
	}
	span.SetAttributes(attribute.Int("images.count", len(images)))

	uris := make([]string, len(images))
	for i, img := range images {
		uris[i] = img.DataURI()
	}

	return &models.PostResult{Success: true, Text: text, Images: uris}, nil
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
