package processor

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars caps extracted text before it is placed in a prompt.
const DefaultMaxChars = 4000

type ProcessorConfig struct {
	// MaxChars is measured in Unicode scalars, not bytes.
	MaxChars int
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultMaxChars
	}

	return Processor{
		config: config,
	}
}

// Process cleans each fragment, drops the empty ones, joins the rest with a
// single space in their original order and truncates the result.
func (p *Processor) Process(fragments []string) string {
	cleaned := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if text := CleanText(fragment); text != "" {
			cleaned = append(cleaned, text)
		}
	}

	return p.Truncate(strings.Join(cleaned, " "))
}

// Truncate caps text at the configured limit.
func (p *Processor) Truncate(text string) string {
	return Truncate(text, p.config.MaxChars)
}

// MaxChars reports the configured limit.
func (p *Processor) MaxChars() int {
	return p.config.MaxChars
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate returns the first limit runes of text. Nothing is appended when
// text is cut, and multi-byte characters are never split.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit || utf8.RuneCountInString(text) <= limit {
		return text
	}

	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
