package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all client configuration.
type Config struct {
	Service   ServiceConfig   `toml:"service"`
	RPC       RPCConfig       `toml:"rpc"`
	Timeouts  TimeoutConfig   `toml:"timeouts"`
	Retry     RetryConfig     `toml:"retry"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Logging   LogConfig       `toml:"logging"`
	Store     StoreConfig     `toml:"store"`
}

// ServiceConfig holds the remote service coordinates.
type ServiceConfig struct {
	BaseURL   string `toml:"base_url" envconfig:"NOTEBOOKLM_BASE_URL"`
	BatchPath string `toml:"batch_path" envconfig:"NOTEBOOKLM_BATCH_PATH"`
	QueryPath string `toml:"query_path" envconfig:"NOTEBOOKLM_QUERY_PATH"`
	// BuildLabel rotates with frontend releases.
	BuildLabel string `toml:"build_label" envconfig:"NOTEBOOKLM_BL"`
	Language   string `toml:"language" envconfig:"NOTEBOOKLM_HL"`
	UserAgent  string `toml:"user_agent" envconfig:"NOTEBOOKLM_USER_AGENT"`
	LoginHost  string `toml:"login_host" envconfig:"NOTEBOOKLM_LOGIN_HOST"`
}

// RPCConfig holds one operation identifier per domain operation.
type RPCConfig struct {
	ListNotebooks string `toml:"list_notebooks" envconfig:"NOTEBOOKLM_RPC_LIST_NOTEBOOKS"`
	GetNotebook   string `toml:"get_notebook" envconfig:"NOTEBOOKLM_RPC_GET_NOTEBOOK"`
	GetSource     string `toml:"get_source" envconfig:"NOTEBOOKLM_RPC_GET_SOURCE"`
	AddURLSource  string `toml:"add_url_source" envconfig:"NOTEBOOKLM_RPC_ADD_URL_SOURCE"`
	AddTextSource string `toml:"add_text_source" envconfig:"NOTEBOOKLM_RPC_ADD_TEXT_SOURCE"`
}

// TimeoutConfig holds per-attempt timeouts.
type TimeoutConfig struct {
	Default Duration `toml:"default" envconfig:"NOTEBOOKLM_TIMEOUT"`
	Source  Duration `toml:"source" envconfig:"NOTEBOOKLM_SOURCE_TIMEOUT"`
	Query   Duration `toml:"query" envconfig:"NOTEBOOKLM_QUERY_TIMEOUT"`
	Page    Duration `toml:"page" envconfig:"NOTEBOOKLM_PAGE_TIMEOUT"`
}

// RetryConfig holds the server-error backoff policy.
type RetryConfig struct {
	MaxRetries int      `toml:"max_retries" envconfig:"NOTEBOOKLM_MAX_RETRIES"`
	BaseDelay  Duration `toml:"base_delay" envconfig:"NOTEBOOKLM_RETRY_BASE"`
	MaxDelay   Duration `toml:"max_delay" envconfig:"NOTEBOOKLM_RETRY_MAX"`
	Jitter     float64  `toml:"jitter" envconfig:"NOTEBOOKLM_RETRY_JITTER"`
}

// RateLimitConfig holds the outbound request rate limit.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" envconfig:"NOTEBOOKLM_RATE_LIMIT"`
	Burst             int     `toml:"burst" envconfig:"NOTEBOOKLM_RATE_BURST"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `toml:"level" envconfig:"LOG_LEVEL"`
	Development bool   `toml:"development" envconfig:"LOG_DEV"`
}

// StoreConfig holds credential store configuration.
type StoreConfig struct {
	DataDir string `toml:"data_dir" envconfig:"NOTEBOOKRPC_DATA_DIR"`
}

// Load builds configuration from defaults, an optional TOML file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL:    "https://notebooklm.google.com",
			BatchPath:  "/_/LabsTailwindUi/data/batchexecute",
			QueryPath:  "/_/LabsTailwindUi/data/google.internal.labs.tailwind.orchestration.v1.LabsTailwindOrchestrationService/GenerateFreeFormStreamed",
			BuildLabel: "boq_labs-tailwind-frontend_20260108.06_p0",
			Language:   "en",
			UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36",
			LoginHost:  "accounts.google.com",
		},
		RPC: RPCConfig{
			ListNotebooks: "wXbhsf",
			GetNotebook:   "rLM1Ne",
			GetSource:     "hizoJc",
			AddURLSource:  "izAoDd",
			AddTextSource: "izAoDd",
		},
		Timeouts: TimeoutConfig{
			Default: Duration(30 * time.Second),
			Source:  Duration(120 * time.Second),
			Query:   Duration(120 * time.Second),
			Page:    Duration(15 * time.Second),
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  Duration(time.Second),
			MaxDelay:   Duration(16 * time.Second),
		},
		RateLimit: RateLimitConfig{},
		Logging: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			DataDir: defaultDataDir(),
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []error

	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("service.base_url %q is not an absolute URL", c.Service.BaseURL))
	}

	ids := map[string]string{
		"rpc.list_notebooks":  c.RPC.ListNotebooks,
		"rpc.get_notebook":    c.RPC.GetNotebook,
		"rpc.get_source":      c.RPC.GetSource,
		"rpc.add_url_source":  c.RPC.AddURLSource,
		"rpc.add_text_source": c.RPC.AddTextSource,
	}
	for name, v := range ids {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, fmt.Errorf("%s must not be empty", name))
		}
	}

	if c.Retry.MaxRetries < 0 {
		problems = append(problems, errors.New("retry.max_retries cannot be negative"))
	}
	if c.Retry.BaseDelay > c.Retry.MaxDelay {
		problems = append(problems, errors.New("retry.base_delay cannot exceed retry.max_delay"))
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		problems = append(problems, errors.New("retry.jitter must be between 0 and 1"))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		problems = append(problems, errors.New("rate_limit.requests_per_second cannot be negative"))
	}

	for name, d := range map[string]Duration{
		"timeouts.default": c.Timeouts.Default,
		"timeouts.source":  c.Timeouts.Source,
		"timeouts.query":   c.Timeouts.Query,
		"timeouts.page":    c.Timeouts.Page,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Errorf("%s must be positive", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(problems...))
	}
	return nil
}

// BatchURL returns the batchexecute endpoint.
func (s ServiceConfig) BatchURL() string {
	return strings.TrimSuffix(s.BaseURL, "/") + s.BatchPath
}

// QueryURL returns the streaming query endpoint.
func (s ServiceConfig) QueryURL() string {
	return strings.TrimSuffix(s.BaseURL, "/") + s.QueryPath
}

// Headers returns the default headers for RPC POSTs.
func (s ServiceConfig) Headers() map[string]string {
	base := strings.TrimSuffix(s.BaseURL, "/")
	return map[string]string{
		"Content-Type":  "application/x-www-form-urlencoded;charset=UTF-8",
		"Origin":        base,
		"Referer":       base + "/",
		"X-Same-Domain": "1",
		"User-Agent":    s.UserAgent,
	}
}

// PageHeaders returns headers that make a landing-page fetch look like a
// browser navigation.
func (s ServiceConfig) PageHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      s.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Sec-Fetch-Dest":  "document",
		"Sec-Fetch-Mode":  "navigate",
		"Sec-Fetch-Site":  "none",
		"Sec-Fetch-User":  "?1",
	}
}

// CredentialsPath returns the credential file location.
func (s StoreConfig) CredentialsPath() string {
	return filepath.Join(s.DataDir, "auth.json")
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "notebookrpc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "notebookrpc")
	}
	return filepath.Join(home, ".local", "share", "notebookrpc")
}

// Duration is a time.Duration that reads "30s"-style text from TOML and
// the environment.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
