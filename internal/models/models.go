package models

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ScrapeRequest is the brand-voice request body. When Text is set it is
// analysed as-is and URL is ignored.
type ScrapeRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type BrandVoiceResult struct {
	Success    bool   `json:"success"`
	BrandVoice string `json:"brandVoice"`
}

type PostRequest struct {
	Topic      string `json:"topic"`
	BrandVoice string `json:"brandVoice"`
}

type PostResult struct {
	Success bool     `json:"success"`
	Text    string   `json:"text"`
	Images  []string `json:"images"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Page is a fetched document before extraction.
type Page struct {
	URL         string
	ContentType string
	Body        string
}

// Image is a single generated image.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image as a base64 data URI suitable for an <img src>.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

var ErrInvalidDataURI = errors.New("invalid data URI")

// ParseDataURI decodes a base64 data URI produced by Image.DataURI.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrInvalidDataURI
	}
	return Image{MIMEType: mime, Data: data}, nil
}
