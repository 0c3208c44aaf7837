package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Search providers understood by tools/web_search.
const (
	SearchProviderGoogle = "google"
	SearchProviderSerper = "serper"
	SearchProviderBrave  = "brave"
)

// Extraction engines understood by tools/web_fetch.
const (
	ExtractEngineSelector    = "selector"
	ExtractEngineReadability = "readability"
)

// Config holds all configuration for the service. It is built once at startup
// and handed to components by value; nothing mutates it afterwards.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	StaticDir    string        `mapstructure:"static_dir"`
	BodyLimit    string        `mapstructure:"body_limit"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig describes the chat-completion endpoint (OpenAI compatible).
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SearchConfig contains web search settings. EngineID is the search-scope
// identifier (Google "cx"); it is only required by the google provider.
type SearchConfig struct {
	Provider   string        `mapstructure:"provider"`
	APIKey     string        `mapstructure:"api_key"`
	EngineID   string        `mapstructure:"engine_id"`
	Endpoint   string        `mapstructure:"endpoint"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ExtractConfig controls page content extraction.
type ExtractConfig struct {
	Engine      string        `mapstructure:"engine"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// TelemetryConfig toggles the prometheus endpoint.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// Configured reports whether every credential the selected provider needs is present.
func (s SearchConfig) Configured() bool {
	if strings.TrimSpace(s.APIKey) == "" {
		return false
	}
	if s.Provider == SearchProviderGoogle || s.Provider == "" {
		return strings.TrimSpace(s.EngineID) != ""
	}
	return true
}

// Normalize applies defaults for unset search values.
func (s SearchConfig) Normalize() SearchConfig {
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	if s.Provider == "" {
		s.Provider = SearchProviderGoogle
	}
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.EngineID = strings.TrimSpace(s.EngineID)
	if s.MaxResults <= 0 || s.MaxResults > 10 {
		s.MaxResults = 10
	}
	if s.Timeout <= 0 {
		s.Timeout = 10 * time.Second
	}
	return s
}

func (s SearchConfig) Validate() error {
	switch s.Provider {
	case SearchProviderGoogle, SearchProviderSerper, SearchProviderBrave:
		return nil
	default:
		return fmt.Errorf("search.provider %q is not supported", s.Provider)
	}
}

// Normalize applies defaults for unset extraction values.
func (e ExtractConfig) Normalize() ExtractConfig {
	e.Engine = strings.ToLower(strings.TrimSpace(e.Engine))
	if e.Engine == "" {
		e.Engine = ExtractEngineSelector
	}
	if strings.TrimSpace(e.UserAgent) == "" {
		e.UserAgent = DefaultUserAgent
	}
	if e.Timeout <= 0 {
		e.Timeout = 10 * time.Second
	}
	if e.Concurrency <= 0 {
		e.Concurrency = 5
	}
	return e
}

func (e ExtractConfig) Validate() error {
	switch e.Engine {
	case ExtractEngineSelector, ExtractEngineReadability:
		return nil
	default:
		return fmt.Errorf("extract.engine %q is not supported", e.Engine)
	}
}

func (l LLMConfig) Normalize() LLMConfig {
	l.APIKey = strings.TrimSpace(l.APIKey)
	l.BaseURL = strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	if l.BaseURL == "" {
		l.BaseURL = DefaultLLMBaseURL
	}
	if strings.TrimSpace(l.Model) == "" {
		l.Model = DefaultLLMModel
	}
	return l
}

func (s ServerConfig) Normalize() ServerConfig {
	s.Address = strings.TrimSpace(s.Address)
	if s.Address == "" {
		s.Address = ":5000"
	}
	if s.Address[0] != ':' && !strings.Contains(s.Address, ":") {
		s.Address = ":" + s.Address
	}
	if len(s.AllowOrigins) == 0 {
		s.AllowOrigins = []string{"*"}
	}
	if s.BodyLimit == "" {
		s.BodyLimit = "1M"
	}
	return s
}

const (
	DefaultLLMBaseURL = "https://api.deepseek.com"
	DefaultLLMModel   = "deepseek-chat"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// legacyEnv maps config keys to environment variables the service has always honoured.
var legacyEnv = map[string][]string{
	"llm.api_key":      {"DEEPSEEK_API_KEY", "OPENAI_API_KEY"},
	"search.api_key":   {"GOOGLE_API_KEY"},
	"search.engine_id": {"GOOGLE_CSE_ID", "GOOGLE_SEARCH_ENGINE_ID"},
}

// LoadConfig loads config from an optional JSON file, the environment and a
// local .env file. A missing config file is not an error; the service is
// expected to run from environment variables alone.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.static_dir", "static")
	v.SetDefault("server.body_limit", "1M")
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("llm.base_url", DefaultLLMBaseURL)
	v.SetDefault("llm.model", DefaultLLMModel)
	v.SetDefault("search.provider", SearchProviderGoogle)
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", 10*time.Second)
	v.SetDefault("extract.engine", ExtractEngineSelector)
	v.SetDefault("extract.timeout", 10*time.Second)
	v.SetDefault("extract.concurrency", 5)
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metrics_path", "/metrics")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("WAYFARER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range legacyEnv {
		names := append([]string{"WAYFARER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize applies defaults to every section.
func (c Config) Normalize() Config {
	c.Server = c.Server.Normalize()
	c.LLM = c.LLM.Normalize()
	c.Search = c.Search.Normalize()
	c.Extract = c.Extract.Normalize()
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.Telemetry.MetricsPath == "" {
		c.Telemetry.MetricsPath = "/metrics"
	}
	return c
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Extract.Validate(); err != nil {
		return err
	}
	return nil
}
