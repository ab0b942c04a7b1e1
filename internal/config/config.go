package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for coldreach.
type Config struct {
	Portfolio    PortfolioConfig
	VectorStore  VectorStoreConfig
	Embeddings   EmbeddingsConfig
	LLM          LLMConfig
	Scraper      ScraperConfig
	Sender       SenderConfig
	Prompt       PromptConfig
	Notification NotificationConfig
}

// PortfolioConfig points at the CSV table of (Techstack, Links) rows.
type PortfolioConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// VectorStoreConfig controls the local similarity collection.
type VectorStoreConfig struct {
	Path       string `yaml:"path"`       // directory holding collections.db
	Collection string `yaml:"collection"` // collection name
	NResults   int    `yaml:"n_results"`  // links returned per query
}

// EmbeddingsConfig selects the embedding backend used by the collection.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider"` // "ollama", "openai" or "gemini"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// LLMConfig selects the text-generation backend.
type LLMConfig struct {
	Provider    string // "ollama", "openai", "claude" or "gemini"
	BaseURL     string
	Model       string
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-request timeout
	Temperature float32
	MaxTokens   int
}

// ScraperConfig controls how job pages are fetched.
type ScraperConfig struct {
	Mode       string        // "http" or "browser"
	UserAgent  string
	Timeout    time.Duration // per-request timeout
	MaxLength  int           // max characters of page text kept
	MinDelay   time.Duration // minimum gap between requests to the same host
	MaxRetries int
	RetryDelay time.Duration
}

// SenderConfig describes who the email is written as.
type SenderConfig struct {
	Name    string `yaml:"name"`
	Role    string `yaml:"role"`
	Company string `yaml:"company"`
	Pitch   string `yaml:"pitch"`
}

// PromptConfig allows replacing the embedded prompt template.
type PromptConfig struct {
	TemplatePath string `yaml:"template_path"`
}

// NotificationConfig controls where drafted emails are delivered.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "stdout", "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultUserAgent     = "Mozilla/5.0 (compatible; coldreach/1.0)"
	defaultPitch         = "An AI & Software Consulting company dedicated to facilitating the seamless integration " +
		"of business processes through automated tools. Over our experience, we have empowered numerous " +
		"enterprises with tailored solutions, fostering scalability, process optimization, cost reduction, " +
		"and heightened overall efficiency."
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Portfolio    PortfolioConfig    `yaml:"portfolio"`
	VectorStore  VectorStoreConfig  `yaml:"vectorstore"`
	Embeddings   EmbeddingsConfig   `yaml:"embeddings"`
	LLM          rawLLMConfig       `yaml:"llm"`
	Scraper      rawScraperConfig   `yaml:"scraper"`
	Sender       SenderConfig       `yaml:"sender"`
	Prompt       PromptConfig       `yaml:"prompt"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawLLMConfig struct {
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Timeout     string   `yaml:"timeout"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

type rawScraperConfig struct {
	Mode       string `yaml:"mode"`
	UserAgent  string `yaml:"user_agent"`
	Timeout    string `yaml:"timeout"`
	MaxLength  int    `yaml:"max_length"`
	MinDelay   string `yaml:"min_delay"`
	MaxRetries *int   `yaml:"max_retries"`
	RetryDelay string `yaml:"retry_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load, but returns the built-in defaults when
// path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

// Parse builds a Config from raw YAML. Environment variables are expanded
// first, then defaults are applied and the result validated.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	llmTimeout, err := parseDuration("llm.timeout", raw.LLM.Timeout, 2*time.Minute)
	if err != nil {
		return nil, err
	}
	scrapeTimeout, err := parseDuration("scraper.timeout", raw.Scraper.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("scraper.min_delay", raw.Scraper.MinDelay, 2*time.Second)
	if err != nil {
		return nil, err
	}
	retryDelay, err := parseDuration("scraper.retry_delay", raw.Scraper.RetryDelay, 5*time.Second)
	if err != nil {
		return nil, err
	}

	maxRetries := 2
	if raw.Scraper.MaxRetries != nil {
		maxRetries = *raw.Scraper.MaxRetries
	}

	var temperature float32
	if raw.LLM.Temperature != nil {
		temperature = *raw.LLM.Temperature
	}

	cfg := &Config{
		Portfolio: PortfolioConfig{
			CSVPath: orDefault(raw.Portfolio.CSVPath, "my_portfolio.csv"),
		},
		VectorStore: VectorStoreConfig{
			Path:       orDefault(raw.VectorStore.Path, "vectorstore"),
			Collection: orDefault(raw.VectorStore.Collection, "portfolio"),
			NResults:   raw.VectorStore.NResults,
		},
		Embeddings: EmbeddingsConfig{
			Provider: strings.ToLower(orDefault(raw.Embeddings.Provider, "ollama")),
			BaseURL:  raw.Embeddings.BaseURL,
			Model:    raw.Embeddings.Model,
			APIKey:   raw.Embeddings.APIKey,
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(orDefault(raw.LLM.Provider, "ollama")),
			BaseURL:     raw.LLM.BaseURL,
			Model:       raw.LLM.Model,
			APIKey:      raw.LLM.APIKey,
			Timeout:     llmTimeout,
			Temperature: temperature,
			MaxTokens:   raw.LLM.MaxTokens,
		},
		Scraper: ScraperConfig{
			Mode:       strings.ToLower(orDefault(raw.Scraper.Mode, "http")),
			UserAgent:  orDefault(raw.Scraper.UserAgent, defaultUserAgent),
			Timeout:    scrapeTimeout,
			MaxLength:  raw.Scraper.MaxLength,
			MinDelay:   minDelay,
			MaxRetries: maxRetries,
			RetryDelay: retryDelay,
		},
		Sender: SenderConfig{
			Name:    orDefault(raw.Sender.Name, "sachin"),
			Role:    orDefault(raw.Sender.Role, "business development executive"),
			Company: orDefault(raw.Sender.Company, "xyz"),
			Pitch:   orDefault(raw.Sender.Pitch, defaultPitch),
		},
		Prompt: raw.Prompt,
		Notification: NotificationConfig{
			Type:       strings.ToLower(orDefault(raw.Notification.Type, "stdout")),
			WebhookURL: raw.Notification.WebhookURL,
		},
	}

	if cfg.VectorStore.NResults == 0 {
		cfg.VectorStore.NResults = 2
	}
	if cfg.Scraper.MaxLength == 0 {
		cfg.Scraper.MaxLength = 50000
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	applyProviderDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyProviderDefaults(cfg *Config) {
	if cfg.Embeddings.Provider == "ollama" {
		cfg.Embeddings.BaseURL = orDefault(cfg.Embeddings.BaseURL, defaultOllamaBaseURL)
		cfg.Embeddings.Model = orDefault(cfg.Embeddings.Model, "nomic-embed-text")
	}
	if cfg.Embeddings.Provider == "openai" {
		cfg.Embeddings.Model = orDefault(cfg.Embeddings.Model, "text-embedding-3-small")
	}
	if cfg.Embeddings.Provider == "gemini" {
		cfg.Embeddings.Model = orDefault(cfg.Embeddings.Model, "text-embedding-004")
	}

	switch cfg.LLM.Provider {
	case "ollama":
		cfg.LLM.BaseURL = orDefault(cfg.LLM.BaseURL, defaultOllamaBaseURL)
		cfg.LLM.Model = orDefault(cfg.LLM.Model, "llama2")
	case "openai":
		cfg.LLM.Model = orDefault(cfg.LLM.Model, "gpt-4o-mini")
	case "claude":
		cfg.LLM.Model = orDefault(cfg.LLM.Model, "claude-3-5-haiku-latest")
	case "gemini":
		cfg.LLM.Model = orDefault(cfg.LLM.Model, "gemini-1.5-flash")
	}
}

func validate(cfg *Config) error {
	if cfg.VectorStore.NResults < 1 || cfg.VectorStore.NResults > 10 {
		return fmt.Errorf("vectorstore.n_results must be between 1 and 10, got %d", cfg.VectorStore.NResults)
	}

	switch cfg.Embeddings.Provider {
	case "ollama":
	case "openai", "gemini":
		if cfg.Embeddings.APIKey == "" {
			return fmt.Errorf("embeddings.api_key is required when embeddings.provider is %q", cfg.Embeddings.Provider)
		}
	default:
		return fmt.Errorf("embeddings.provider %q is not supported", cfg.Embeddings.Provider)
	}

	switch cfg.LLM.Provider {
	case "ollama":
	case "openai", "claude", "gemini":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when llm.provider is %q", cfg.LLM.Provider)
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", cfg.LLM.Temperature)
	}

	if cfg.Scraper.Mode != "http" && cfg.Scraper.Mode != "browser" {
		return fmt.Errorf("scraper.mode must be \"http\" or \"browser\", got %q", cfg.Scraper.Mode)
	}
	if cfg.Scraper.Timeout <= 0 {
		return fmt.Errorf("scraper.timeout must be positive, got %v", cfg.Scraper.Timeout)
	}
	if cfg.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must not be negative, got %d", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.MaxLength < 0 {
		return fmt.Errorf("scraper.max_length must not be negative, got %d", cfg.Scraper.MaxLength)
	}

	switch cfg.Notification.Type {
	case "stdout", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type %q is not supported", cfg.Notification.Type)
	}

	return nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
