package llm

import (
	"github.com/tmc/langchaingo/prompts"
)

// Scraped and caller-supplied text is placed into these templates verbatim.

const brandVoiceTemplate = `Analyze the following text from a social media page. Ignore any generic legal text like "copyright" or "terms of service". Describe the brand's voice in 3-5 bullet points, focusing on the tone, style, and personality. This analysis will be used to generate social media posts. Text: "{{.text}}"`

const postTemplate = `Write a high-quality, engaging social media post based on the following topic and tone.
- Topic: {{.topic}}
- Tone: {{.tone}}
- Style: Use hashtags, emojis, and a short call to action`

const imageTemplate = `Create an eye-catching, high-quality image to accompany a social media post.
- Topic: {{.topic}}
- Mood: {{.tone}}
- Post: {{.post}}
Do not render any text, letters or logos in the image.`

var (
	brandVoicePrompt = prompts.NewPromptTemplate(brandVoiceTemplate, []string{"text"})
	postPrompt       = prompts.NewPromptTemplate(postTemplate, []string{"topic", "tone"})
	imagePrompt      = prompts.NewPromptTemplate(imageTemplate, []string{"topic", "tone", "post"})
)

// BrandVoicePrompt asks for a 3-5 bullet description of the voice of text.
func BrandVoicePrompt(text string) (string, error) {
	return brandVoicePrompt.Format(map[string]any{"text": text})
}

// PostPrompt asks for a social post about topic written in tone.
func PostPrompt(topic, tone string) (string, error) {
	return postPrompt.Format(map[string]any{"topic": topic, "tone": tone})
}

// ImagePrompt asks for an image that fits a generated post.
func ImagePrompt(topic, tone, post string) (string, error) {
	return imagePrompt.Format(map[string]any{"topic": topic, "tone": tone, "post": post})
}
