package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MaxImageCount is the most images a single post may request.
const MaxImageCount = 8

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var aspectRatios = map[string]bool{"1:1": true, "3:4": true, "4:3": true, "9:16": true, "16:9": true}

// Validate checks ranges and formats. Credentials are not checked here;
// a server without them still starts and reports the problem per request.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Gemini config
	endpoints := []struct{ field, raw string }{
		{"gemini.base_url", c.Gemini.BaseURL},
		{"gemini.token_url", c.Gemini.TokenURL},
	}
	for _, e := range endpoints {
		if u, err := url.Parse(e.raw); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   e.field,
				Message: fmt.Sprintf("invalid URL: %q", e.raw),
			})
		}
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "gemini.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Gemini.MaxTokens < 0 || c.Gemini.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "gemini.max_tokens",
			Message: "max_tokens must be between 0 and 8192",
		})
	}

	if c.Gemini.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gemini.timeout",
			Message: "timeout must be positive",
		})
	}

	if c.Gemini.ImageTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "gemini.image_timeout",
			Message: "image_timeout must be positive",
		})
	}

	if c.Gemini.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "gemini.rate_limit",
			Message: "rate_limit cannot be negative",
		})
	}

	// Validate Scraper config
	if c.Scraper.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.timeout",
			Message: "timeout must be positive",
		})
	}

	if c.Scraper.MaxBodyBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_body_bytes",
			Message: "max_body_bytes must be positive",
		})
	}

	if c.Scraper.MaxChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_chars",
			Message: "max_chars must be positive",
		})
	}

	// Validate Post config
	if c.Post.ImageCount < 1 || c.Post.ImageCount > MaxImageCount {
		errors = append(errors, ValidationError{
			Field:   "post.image_count",
			Message: fmt.Sprintf("image_count must be between 1 and %d", MaxImageCount),
		})
	}

	if strings.TrimSpace(c.Post.DefaultTone) == "" {
		errors = append(errors, ValidationError{
			Field:   "post.default_tone",
			Message: "default_tone cannot be blank",
		})
	}

	if !aspectRatios[c.Post.AspectRatio] {
		errors = append(errors, ValidationError{
			Field:   "post.aspect_ratio",
			Message: fmt.Sprintf("unsupported aspect ratio: %s", c.Post.AspectRatio),
		})
	}

	// Validate Log config
	if !logLevels[strings.ToLower(c.Log.Level)] {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level: %s", c.Log.Level),
		})
	}

	return errors
}
