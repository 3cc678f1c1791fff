package processor_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/ezodus/pkg/processor"
)

func TestProcessor_Process(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	fragments := []string{
		"We build tools.",
		"  Our   tools\n are\tfast. ",
		"",
		"   ",
		"Our tools are fast.",
	}

	got := p.Process(fragments)

	// Order and repetition are preserved, blanks are dropped.
	assert.Equal(t, "We build tools. Our tools are fast. Our tools are fast.", got)
}

func TestProcessor_ProcessEmpty(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	assert.Empty(t, p.Process(nil))
	assert.Empty(t, p.Process([]string{" ", "\n\t"}))
}

func TestProcessor_Defaults(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{MaxChars: -1})
	assert.Equal(t, processor.DefaultMaxChars, p.MaxChars())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"multi-byte kept whole", "héllo wörld", 7, "héllo w"},
		{"emoji counted as one", "🚀🚀🚀", 2, "🚀🚀"},
		{"zero limit", "hello", 0, ""},
		{"empty input", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := processor.Truncate(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncate_LongTextIsPrefix(t *testing.T) {
	long := strings.Repeat("ab€", 2000)

	got := processor.Truncate(long, processor.DefaultMaxChars)

	assert.Equal(t, processor.DefaultMaxChars, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(long, got))
}

func TestProcessor_ProcessTruncates(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{MaxChars: 12})

	got := p.Process([]string{"We build tools.", "More text"})

	assert.Equal(t, "We build too", got)
}
