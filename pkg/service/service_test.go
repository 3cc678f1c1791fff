package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/xhad/ezodus/internal/models"
	"github.com/xhad/ezodus/pkg/llm"
	"github.com/xhad/ezodus/pkg/processor"
	"github.com/xhad/ezodus/pkg/scraper"
	"google.golang.org/api/googleapi"
)

type fakeModel struct {
	reply   string
	err     error
	calls   int
	prompts []string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	for _, msg := range messages {
		for _, p := range msg.Parts {
			if text, ok := p.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

type fakeFetcher struct {
	body  string
	err   error
	calls int
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*models.Page, error) {
	f.calls++
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{URL: url, ContentType: "text/html", Body: f.body}, nil
}

type fakeImages struct {
	images []models.Image
	err    error
	calls  int
	prompt string
	count  int
}

func (f *fakeImages) GenerateImages(_ context.Context, prompt string, count int) ([]models.Image, error) {
	f.calls++
	f.prompt = prompt
	f.count = count
	return f.images, f.err
}

const brandPage = `<html><head><meta property="og:description" content="We build tools."></head>
<body><p>Tools for makers.</p><p>Built to last.</p><p>Loved by teams.</p></body></html>`

func newTestService(fetcher *fakeFetcher, model *fakeModel, images *fakeImages) *Service {
	config := Config{Fetcher: fetcher}
	if model != nil {
		config.Text = model
	}
	if images != nil {
		config.Images = images
	}
	return NewWithConfig(config)
}

func TestAnalyzeBrandVoiceFromURL(t *testing.T) {
	fetcher := &fakeFetcher{body: brandPage}
	model := &fakeModel{reply: "- Practical\n- Confident"}
	svc := newTestService(fetcher, model, &fakeImages{})

	result, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: " https://example.com "})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "- Practical\n- Confident", result.BrandVoice)
	assert.Equal(t, []string{"https://example.com"}, fetcher.urls)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `Text: "We build tools. Tools for makers. Built to last. Loved by teams."`)
}

func TestAnalyzeBrandVoiceSeedWhitespace(t *testing.T) {
	page := "<html><head><meta property=\"og:description\" content=\"We  build\n tools.\"></head>" +
		"<body><p>One.</p><p>Two.</p></body></html>"
	model := &fakeModel{reply: "- Plain"}
	svc := newTestService(&fakeFetcher{body: page}, model, &fakeImages{})

	_, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `Text: "We build tools. One. Two."`)
}

func TestAnalyzeBrandVoiceNormalizesVideoChannel(t *testing.T) {
	fetcher := &fakeFetcher{body: `<a id="video-title" title="Launch day">x</a>`}
	svc := newTestService(fetcher, &fakeModel{reply: "voice"}, &fakeImages{})

	_, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://www.youtube.com/@brand"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.youtube.com/@brand/about"}, fetcher.urls)
}

func TestAnalyzeBrandVoiceTruncates(t *testing.T) {
	long := strings.Repeat("é", processor.DefaultMaxChars+500)
	fetcher := &fakeFetcher{body: "<p>" + long + "</p>"}
	model := &fakeModel{reply: "voice"}
	svc := newTestService(fetcher, model, &fakeImages{})

	_, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://example.com"})
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `Text: "`+long[:2*processor.DefaultMaxChars]+`"`)
	assert.NotContains(t, model.prompts[0], long[:2*processor.DefaultMaxChars+2])
}

func TestAnalyzeBrandVoiceFromText(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &fakeModel{reply: "voice"}
	svc := newTestService(fetcher, model, &fakeImages{})

	result, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://ignored.example", Text: "  We ship   weekly.  "})
	require.NoError(t, err)

	assert.Equal(t, "voice", result.BrandVoice)
	assert.Zero(t, fetcher.calls)
	assert.Contains(t, model.prompts[0], `Text: "We ship weekly."`)
}

func TestAnalyzeBrandVoiceErrors(t *testing.T) {
	upstream := &llm.UpstreamError{Service: "gemini", StatusCode: 403, Message: "API key not valid"}

	tests := []struct {
		name        string
		req         models.ScrapeRequest
		fetcher     *fakeFetcher
		model       *fakeModel
		wantStatus  int
		wantMessage string
		wantFetches int
		wantCalls   int
	}{
		{
			name:        "missing url",
			req:         models.ScrapeRequest{URL: "   "},
			fetcher:     &fakeFetcher{body: brandPage},
			model:       &fakeModel{reply: "voice"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgURLRequired,
		},
		{
			name:        "relative url",
			req:         models.ScrapeRequest{URL: "example.com"},
			fetcher:     &fakeFetcher{body: brandPage},
			model:       &fakeModel{reply: "voice"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgInvalidURL,
		},
		{
			name:        "unsupported scheme",
			req:         models.ScrapeRequest{URL: "ftp://example.com/file"},
			fetcher:     &fakeFetcher{body: brandPage},
			model:       &fakeModel{reply: "voice"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgInvalidURL,
		},
		{
			name:        "not configured",
			req:         models.ScrapeRequest{URL: "https://example.com"},
			fetcher:     &fakeFetcher{body: brandPage},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgNotConfigured,
		},
		{
			name:        "empty page",
			req:         models.ScrapeRequest{URL: "https://example.com"},
			fetcher:     &fakeFetcher{body: `<html><body><script>app()</script></body></html>`},
			model:       &fakeModel{reply: "voice"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgNoText,
			wantFetches: 1,
		},
		{
			name:        "fetch failure",
			req:         models.ScrapeRequest{URL: "https://example.com"},
			fetcher:     &fakeFetcher{err: &scraper.FetchError{URL: "https://example.com", StatusCode: 403}},
			model:       &fakeModel{reply: "voice"},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantFetches: 1,
		},
		{
			name:        "upstream failure",
			req:         models.ScrapeRequest{URL: "https://example.com"},
			fetcher:     &fakeFetcher{body: brandPage},
			model:       &fakeModel{err: upstream},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantFetches: 1,
			wantCalls:   1,
		},
		{
			name:        "blank analysis",
			req:         models.ScrapeRequest{URL: "https://example.com"},
			fetcher:     &fakeFetcher{body: brandPage},
			model:       &fakeModel{reply: "  "},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantFetches: 1,
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.fetcher, tt.model, &fakeImages{})

			result, err := svc.AnalyzeBrandVoice(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			status, message := StatusFor(err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
			assert.Equal(t, tt.wantFetches, tt.fetcher.calls)
			if tt.model != nil {
				assert.Equal(t, tt.wantCalls, tt.model.calls)
			}
		})
	}
}

func TestAnalyzeBrandVoiceKeepsUpstreamCause(t *testing.T) {
	upstream := &llm.UpstreamError{Service: "gemini", StatusCode: 429, Message: "quota"}
	svc := newTestService(&fakeFetcher{body: brandPage}, &fakeModel{err: upstream}, &fakeImages{})

	_, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://example.com"})

	var got *llm.UpstreamError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 429, got.StatusCode)
	_, message := StatusFor(err)
	assert.NotContains(t, message, "quota")
}

func TestProviderErrorsBecomeUpstream(t *testing.T) {
	provider := &googleapi.Error{Code: 403, Message: "Permission denied"}
	svc := newTestService(&fakeFetcher{body: brandPage}, &fakeModel{err: provider}, &fakeImages{})

	_, err := svc.AnalyzeBrandVoice(context.Background(), models.ScrapeRequest{URL: "https://example.com"})

	var got *llm.UpstreamError
	require.True(t, errors.As(err, &got), "got %v", err)
	assert.Equal(t, "gemini", got.Service)
	assert.Equal(t, 403, got.StatusCode)
	assert.Equal(t, "Permission denied", got.Message)

	svc = newTestService(&fakeFetcher{}, &fakeModel{reply: "A post"}, &fakeImages{err: errors.New("connection reset")})
	_, err = svc.GeneratePost(context.Background(), models.PostRequest{Topic: "AI tools"})

	require.True(t, errors.As(err, &got), "got %v", err)
	assert.Equal(t, "imagen", got.Service)
	status, _ := StatusFor(err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestGeneratePost(t *testing.T) {
	model := &fakeModel{reply: "AI tools make work lighter! #ai Try it today."}
	images := &fakeImages{images: []models.Image{
		{MIMEType: "image/png", Data: []byte{1, 2, 3}},
		{Data: []byte{4, 5}},
	}}
	svc := newTestService(&fakeFetcher{}, model, images)

	result, err := svc.GeneratePost(context.Background(), models.PostRequest{Topic: " AI tools ", BrandVoice: "Friendly and helpful"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "AI tools make work lighter! #ai Try it today.", result.Text)
	assert.Equal(t, []string{"data:image/png;base64,AQID", "data:image/png;base64,BAU="}, result.Images)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "AI tools")
	assert.Contains(t, model.prompts[0], "Friendly and helpful")
	assert.Equal(t, 1, images.calls)
	assert.Equal(t, DefaultImageCount, images.count)
	assert.Contains(t, images.prompt, "AI tools make work lighter!")
}

func TestGeneratePostDefaultTone(t *testing.T) {
	model := &fakeModel{reply: "post"}
	images := &fakeImages{images: []models.Image{{Data: []byte{1}}}}
	svc := NewWithConfig(Config{Text: model, Images: images, ImageCount: 2})

	_, err := svc.GeneratePost(context.Background(), models.PostRequest{Topic: "Launch", BrandVoice: "   "})
	require.NoError(t, err)

	assert.Contains(t, model.prompts[0], "- Tone: "+DefaultTone)
	assert.Equal(t, 2, images.count)
}

func TestGeneratePostExcerptInImagePrompt(t *testing.T) {
	long := strings.Repeat("a", 3000)
	images := &fakeImages{images: []models.Image{{Data: []byte{1}}}}
	svc := NewWithConfig(Config{Text: &fakeModel{reply: long}, Images: images, PostExcerpt: 100})

	result, err := svc.GeneratePost(context.Background(), models.PostRequest{Topic: "Launch"})
	require.NoError(t, err)

	assert.Equal(t, long, result.Text)
	assert.Contains(t, images.prompt, strings.Repeat("a", 100))
	assert.NotContains(t, images.prompt, strings.Repeat("a", 101))
}

func TestGeneratePostErrors(t *testing.T) {
	tests := []struct {
		name        string
		req         models.PostRequest
		model       *fakeModel
		images      *fakeImages
		wantStatus  int
		wantMessage string
		wantText    int
		wantImages  int
	}{
		{
			name:        "missing topic",
			req:         models.PostRequest{Topic: "  ", BrandVoice: "Bold"},
			model:       &fakeModel{reply: "post"},
			images:      &fakeImages{images: []models.Image{{Data: []byte{1}}}},
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgTopicRequired,
		},
		{
			name:        "not configured",
			req:         models.PostRequest{Topic: "AI tools"},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgNotConfigured,
		},
		{
			name:        "text failure skips images",
			req:         models.PostRequest{Topic: "AI tools"},
			model:       &fakeModel{err: &llm.UpstreamError{Service: "gemini", Message: "no candidates returned"}},
			images:      &fakeImages{images: []models.Image{{Data: []byte{1}}}},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantText:    1,
		},
		{
			name:        "image failure",
			req:         models.PostRequest{Topic: "AI tools"},
			model:       &fakeModel{reply: "post"},
			images:      &fakeImages{err: &llm.UpstreamError{Service: "imagen", Message: "no images returned"}},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantText:    1,
			wantImages:  1,
		},
		{
			name:        "no images",
			req:         models.PostRequest{Topic: "AI tools"},
			model:       &fakeModel{reply: "post"},
			images:      &fakeImages{},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: MsgInternal,
			wantText:    1,
			wantImages:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeFetcher{}, tt.model, tt.images)

			result, err := svc.GeneratePost(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			status, message := StatusFor(err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
			if tt.model != nil {
				assert.Equal(t, tt.wantText, tt.model.calls)
			}
			if tt.images != nil {
				assert.Equal(t, tt.wantImages, tt.images.calls)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"nil", nil, http.StatusOK, ""},
		{"input", &InputError{Field: "topic", Message: MsgTopicRequired}, http.StatusBadRequest, MsgTopicRequired},
		{"wrapped empty", errors.Join(errors.New("ctx"), ErrExtractionEmpty), http.StatusBadRequest, MsgNoText},
		{"not configured", ErrNotConfigured, http.StatusInternalServerError, MsgNotConfigured},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}
