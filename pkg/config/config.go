package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials means neither an API key nor a complete service
// account identity is configured.
var ErrMissingCredentials = errors.New("no Gemini credentials configured")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Scraper ScraperConfig `yaml:"scraper"`
	Post    PostConfig    `yaml:"post"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GeminiConfig struct {
	// Secrets come from the environment only.
	APIKey      string `yaml:"-"`
	ClientEmail string `yaml:"-"`
	PrivateKey  string `yaml:"-"`
	// CredentialsFile is a service account key file.
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
	// Location is the Vertex AI region used for images with a service account.
	Location string `yaml:"location"`

	BaseURL     string        `yaml:"base_url"`
	TokenURL    string        `yaml:"token_url"`
	TextModel   string        `yaml:"text_model"`
	ImageModel  string        `yaml:"image_model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	// ImageTimeout bounds a single image generation call.
	ImageTimeout time.Duration `yaml:"image_timeout"`
	RateLimit    float64       `yaml:"rate_limit"`
}

type ScraperConfig struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	MaxChars     int           `yaml:"max_chars"`
	Render       bool          `yaml:"render"`
	ChromePath   string        `yaml:"chrome_path"`
	Readability  bool          `yaml:"readability"`
}

type PostConfig struct {
	ImageCount  int    `yaml:"image_count"`
	DefaultTone string `yaml:"default_tone"`
	AspectRatio string `yaml:"aspect_ratio"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AuthMode is the way calls to the generative APIs are authenticated.
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthAPIKey
	AuthServiceAccount
)

func (m AuthMode) String() string {
	switch m {
	case AuthAPIKey:
		return "api-key"
	case AuthServiceAccount:
		return "service-account"
	default:
		return "none"
	}
}

// Credentials reports which auth mode the configuration supports. An API
// key takes precedence over a service account, whether that comes from a
// key file or from an email and private key.
func (c *Config) Credentials() (AuthMode, error) {
	switch {
	case c.Gemini.APIKey != "":
		return AuthAPIKey, nil
	case c.Gemini.CredentialsFile != "":
		return AuthServiceAccount, nil
	case c.Gemini.ClientEmail != "" && c.Gemini.PrivateKey != "":
		return AuthServiceAccount, nil
	default:
		return AuthNone, ErrMissingCredentials
	}
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		path = findConfig()
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func findConfig() string {
	for _, loc := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	if loc, err := xdg.SearchConfigFile("ezodus/config.yaml"); err == nil {
		return loc
	}
	if _, err := os.Stat("/etc/ezodus/config.yaml"); err == nil {
		return "/etc/ezodus/config.yaml"
	}
	return ""
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 90 * time.Second
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if config.Gemini.BaseURL == "" {
		config.Gemini.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Gemini.TokenURL == "" {
		config.Gemini.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if config.Gemini.TextModel == "" {
		config.Gemini.TextModel = "gemini-2.0-flash"
	}
	if config.Gemini.ImageModel == "" {
		config.Gemini.ImageModel = "imagen-3.0-generate-002"
	}
	if config.Gemini.Timeout == 0 {
		config.Gemini.Timeout = 10 * time.Second
	}
	if config.Gemini.ImageTimeout == 0 {
		config.Gemini.ImageTimeout = 60 * time.Second
	}
	if config.Gemini.Location == "" {
		config.Gemini.Location = "us-central1"
	}
	if config.Gemini.RateLimit == 0 {
		config.Gemini.RateLimit = 5
	}

	if config.Scraper.UserAgent == "" {
		config.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 15 * time.Second
	}
	if config.Scraper.MaxBodyBytes == 0 {
		config.Scraper.MaxBodyBytes = 10 << 20
	}
	if config.Scraper.MaxChars == 0 {
		config.Scraper.MaxChars = 4000
	}

	if config.Post.ImageCount == 0 {
		config.Post.ImageCount = 4
	}
	if config.Post.DefaultTone == "" {
		config.Post.DefaultTone = "Friendly, modern, and bold"
	}
	if config.Post.AspectRatio == "" {
		config.Post.AspectRatio = "1:1"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if email := os.Getenv("GOOGLE_CLIENT_EMAIL"); email != "" {
		config.Gemini.ClientEmail = email
	}
	if key := os.Getenv("GOOGLE_PRIVATE_KEY"); key != "" {
		// Deploy dashboards store the PEM on one line with escaped newlines.
		config.Gemini.PrivateKey = strings.ReplaceAll(key, `\n`, "\n")
	}
	if file := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); file != "" {
		config.Gemini.CredentialsFile = file
	}
	if project := os.Getenv("GOOGLE_PROJECT_ID"); project != "" {
		config.Gemini.ProjectID = project
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Addr = ":" + port
	}
	if level := os.Getenv("EZODUS_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
