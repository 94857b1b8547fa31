package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ProductJudge/internal/domain"
)

const (
	configPathEnv      = "PRODUCT_JUDGE_CONFIG"
	reasoningKeyEnv    = "REASONING_API_KEY"
	reasoningProvEnv   = "REASONING_PROVIDER"
	reasoningModelEnv  = "REASONING_MODEL"
	reasoningBaseEnv   = "REASONING_BASE_URL"
	searchKeyEnv       = "TAVILY_API_KEY"
	portEnv            = "PORT"
	logLevelEnv        = "LOG_LEVEL"
	aggregationEnv     = "DECISION_AGGREGATION"
	defaultProvider    = ProviderGroq
	defaultMaxArgs     = 5
	defaultMaxChars    = 12000
	defaultServerPort  = 8080
	defaultSearchURL   = "https://api.tavily.com/search"
	defaultAggregation = "mean"
)

// Reasoning providers understood by the llm package.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var providerKeyEnv = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

var providerModel = map[string]string{
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-1.5-flash",
}

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Search    SearchConfig    `yaml:"search"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Decision  DecisionConfig  `yaml:"decision"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ReasoningConfig defines how to reach the LLM backend.
type ReasoningConfig struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	BaseURL      string `yaml:"baseUrl"`
	MaxArguments int    `yaml:"maxArguments"`
	LLMRationale bool   `yaml:"llmRationale"`
}

// SearchConfig wires the web search API (Tavily).
type SearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"apiKey"`
	MaxResults int    `yaml:"maxResults"`
	Depth      string `yaml:"depth"`
}

// FetchConfig lists fetch strategies in fallback order and retry policy.
type FetchConfig struct {
	Strategies    []string      `yaml:"strategies"`
	MaxChars      int           `yaml:"maxChars"`
	Retries       int           `yaml:"retries"`
	RetryBackoff  time.Duration `yaml:"retryBackoff"`
	UserAgent     string        `yaml:"userAgent"`
	BrowserSettle time.Duration `yaml:"browserSettle"`
}

// DecisionConfig picks the aggregation policy.
type DecisionConfig struct {
	Aggregation string `yaml:"aggregation"`
}

// TimeoutConfig bounds every external call.
type TimeoutConfig struct {
	Fetch    time.Duration `yaml:"fetch"`
	Generate time.Duration `yaml:"generate"`
	Explain  time.Duration `yaml:"explain"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.applyProviderDefaults()

	return cfg
}

// Validate reports missing secrets and unusable settings as domain.ErrConfig.
func (c Config) Validate() error {
	var problems []string

	if _, ok := providerKeyEnv[c.Reasoning.Provider]; !ok {
		problems = append(problems, fmt.Sprintf("unknown reasoning provider %q", c.Reasoning.Provider))
	}
	if strings.TrimSpace(c.Reasoning.APIKey) == "" {
		problems = append(problems, fmt.Sprintf("reasoning API key is missing (set %s or %s)", reasoningKeyEnv, providerKeyEnv[c.Reasoning.Provider]))
	}
	if strings.TrimSpace(c.Search.APIKey) == "" {
		problems = append(problems, fmt.Sprintf("search API key is missing (set %s)", searchKeyEnv))
	}
	if len(c.Fetch.Strategies) == 0 {
		problems = append(problems, "no fetch strategies configured")
	}
	switch strings.ToLower(c.Decision.Aggregation) {
	case "mean", "sum":
	default:
		problems = append(problems, fmt.Sprintf("unknown aggregation policy %q", c.Decision.Aggregation))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(reasoningProvEnv); v != "" {
		c.Reasoning.Provider = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(reasoningKeyEnv); v != "" {
		c.Reasoning.APIKey = v
	} else if c.Reasoning.APIKey == "" {
		if name, ok := providerKeyEnv[c.Reasoning.Provider]; ok {
			c.Reasoning.APIKey = os.Getenv(name)
		}
	}

	if v := os.Getenv(reasoningModelEnv); v != "" {
		c.Reasoning.Model = v
	}

	if v := os.Getenv(reasoningBaseEnv); v != "" {
		c.Reasoning.BaseURL = v
	}

	if v := os.Getenv(searchKeyEnv); v != "" {
		c.Search.APIKey = v
	}

	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		} else {
			log.Printf("config: ignoring invalid %s=%q", portEnv, v)
		}
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(aggregationEnv); v != "" {
		c.Decision.Aggregation = v
	}
}

func (c *Config) applyProviderDefaults() {
	if c.Reasoning.Model == "" {
		c.Reasoning.Model = providerModel[c.Reasoning.Provider]
	}
	if c.Reasoning.Provider == ProviderGroq && c.Reasoning.BaseURL == "" {
		c.Reasoning.BaseURL = "https://api.groq.com/openai/v1/"
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != 0 {
		base.Server.Port = override.Server.Port
	}
	if len(override.Server.AllowOrigins) > 0 {
		base.Server.AllowOrigins = override.Server.AllowOrigins
	}
	if override.Server.ShutdownTimeout != 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Reasoning.Provider != "" {
		base.Reasoning.Provider = strings.ToLower(override.Reasoning.Provider)
	}
	if override.Reasoning.Model != "" {
		base.Reasoning.Model = override.Reasoning.Model
	}
	if override.Reasoning.APIKey != "" {
		base.Reasoning.APIKey = override.Reasoning.APIKey
	}
	if override.Reasoning.BaseURL != "" {
		base.Reasoning.BaseURL = override.Reasoning.BaseURL
	}
	if override.Reasoning.MaxArguments > 0 {
		base.Reasoning.MaxArguments = override.Reasoning.MaxArguments
	}
	if override.Reasoning.LLMRationale {
		base.Reasoning.LLMRationale = true
	}

	if override.Search.Endpoint != "" {
		base.Search.Endpoint = override.Search.Endpoint
	}
	if override.Search.APIKey != "" {
		base.Search.APIKey = override.Search.APIKey
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.Depth != "" {
		base.Search.Depth = override.Search.Depth
	}

	if len(override.Fetch.Strategies) > 0 {
		base.Fetch.Strategies = override.Fetch.Strategies
	}
	if override.Fetch.MaxChars > 0 {
		base.Fetch.MaxChars = override.Fetch.MaxChars
	}
	if override.Fetch.Retries > 0 {
		base.Fetch.Retries = override.Fetch.Retries
	}
	if override.Fetch.RetryBackoff > 0 {
		base.Fetch.RetryBackoff = override.Fetch.RetryBackoff
	}
	if override.Fetch.UserAgent != "" {
		base.Fetch.UserAgent = override.Fetch.UserAgent
	}
	if override.Fetch.BrowserSettle > 0 {
		base.Fetch.BrowserSettle = override.Fetch.BrowserSettle
	}

	if override.Decision.Aggregation != "" {
		base.Decision.Aggregation = override.Decision.Aggregation
	}

	if override.Timeouts.Fetch > 0 {
		base.Timeouts.Fetch = override.Timeouts.Fetch
	}
	if override.Timeouts.Generate > 0 {
		base.Timeouts.Generate = override.Timeouts.Generate
	}
	if override.Timeouts.Explain > 0 {
		base.Timeouts.Explain = override.Timeouts.Explain
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            defaultServerPort,
			AllowOrigins:    []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Reasoning: ReasoningConfig{
			Provider:     defaultProvider,
			MaxArguments: defaultMaxArgs,
		},
		Search: SearchConfig{
			Endpoint:   defaultSearchURL,
			MaxResults: 5,
			Depth:      "advanced",
		},
		Fetch: FetchConfig{
			Strategies:    []string{"search", "page"},
			MaxChars:      defaultMaxChars,
			Retries:       1,
			RetryBackoff:  time.Second,
			UserAgent:     "ProductJudge/1.0",
			BrowserSettle: 2 * time.Second,
		},
		Decision: DecisionConfig{Aggregation: defaultAggregation},
		Timeouts: TimeoutConfig{
			Fetch:    30 * time.Second,
			Generate: 60 * time.Second,
			Explain:  30 * time.Second,
		},
	}
}
