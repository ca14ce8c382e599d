// FILE: logseer/src/internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// Config is the full, eagerly validated agent configuration
type Config struct {
	// Log sources to tail
	Sources []SourceConfig `toml:"sources"`

	// Cycle scheduling
	Monitoring MonitoringConfig `toml:"monitoring"`

	// Thresholds for escalating to deep analysis
	AnalysisThresholds AnalysisThresholds `toml:"analysis_thresholds"`

	// Thresholds for raising alerts
	AlertThresholds AlertThresholds `toml:"alert_thresholds"`

	// Persistent store location
	Storage StorageConfig `toml:"storage"`

	// External deep analyzer (Anthropic API)
	DeepAnalysis DeepAnalysisConfig `toml:"deep_analysis"`

	// Notification channels
	Email   EmailConfig   `toml:"email"`
	Webhook WebhookConfig `toml:"webhook"`

	// Query API surface
	API APIConfig `toml:"api"`

	// Agent's own logging
	Logging LogConfig `toml:"logging"`
}

// SourceConfig identifies one log file to tail. Immutable during a run.
type SourceConfig struct {
	Name    string `toml:"name"`
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

type MonitoringConfig struct {
	CheckIntervalMinutes int    `toml:"check_interval_minutes"`
	DailySummaryTime     string `toml:"daily_summary_time"` // HH:MM
	SourcePauseSeconds   int    `toml:"source_pause_seconds"`
}

type AnalysisThresholds struct {
	ErrorCount      int     `toml:"error_count"`
	AvgResponseTime float64 `toml:"avg_response_time"` // ms
	HighActivity    int     `toml:"high_activity"`     // lines per cycle
	ErrorRate       float64 `toml:"error_rate"`        // percent
}

type AlertThresholds struct {
	HealthScore  int     `toml:"health_score"`
	ErrorCount   int     `toml:"error_count"`
	ResponseTime float64 `toml:"response_time"` // ms, reserved
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type DeepAnalysisConfig struct {
	Enabled           bool   `toml:"enabled"`
	APIKey            string `toml:"api_key"`
	Model             string `toml:"model"`
	MaxTokens         int    `toml:"max_tokens"`
	Endpoint          string `toml:"endpoint"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRetries        int    `toml:"max_retries"`
	RetryDelayMS      int    `toml:"retry_delay_ms"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	MaxPromptChars    int    `toml:"max_prompt_chars"`
}

type EmailConfig struct {
	Enabled    bool   `toml:"enabled"`
	SMTPServer string `toml:"smtp_server"`
	SMTPPort   int    `toml:"smtp_port"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	FromEmail  string `toml:"from_email"`
	ToEmail    string `toml:"to_email"`
}

type WebhookConfig struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type APIConfig struct {
	Enabled   bool                `toml:"enabled"`
	Host      string              `toml:"host"`
	Port      int                 `toml:"port"`
	Auth      *APIAuthConfig      `toml:"auth"`
	RateLimit *APIRateLimitConfig `toml:"rate_limit"`
}

type APIAuthConfig struct {
	// "none", "bearer" or "jwt"
	Type string `toml:"type"`

	// Plaintext tokens accepted as-is
	Tokens []string `toml:"tokens"`

	// Bcrypt hashes of accepted tokens (generate with token-gen)
	TokenHashes []string `toml:"token_hashes"`

	// HS256 signing key for JWT validation
	JWTSigningKey string `toml:"jwt_signing_key"`
}

type APIRateLimitConfig struct {
	RequestsPerSecond int `toml:"requests_per_second"`
	BurstSize         int `toml:"burst_size"`
}

func defaults() *Config {
	return &Config{
		Monitoring: MonitoringConfig{
			CheckIntervalMinutes: 15,
			DailySummaryTime:     "09:00",
			SourcePauseSeconds:   1,
		},
		AnalysisThresholds: AnalysisThresholds{
			ErrorCount:      10,
			AvgResponseTime: 2000,
			HighActivity:    1000,
			ErrorRate:       5.0,
		},
		AlertThresholds: AlertThresholds{
			HealthScore:  3,
			ErrorCount:   20,
			ResponseTime: 5000,
		},
		Storage: StorageConfig{
			Path: "logseer.db",
		},
		DeepAnalysis: DeepAnalysisConfig{
			Enabled:           true,
			Model:             "claude-sonnet-4-20250514",
			MaxTokens:         1000,
			Endpoint:          "https://api.anthropic.com/v1/messages",
			TimeoutSeconds:    60,
			MaxRetries:        2,
			RetryDelayMS:      1000,
			RequestsPerMinute: 10,
			MaxPromptChars:    6000,
		},
		Email: EmailConfig{
			Enabled:  false,
			SMTPPort: 587,
		},
		Webhook: WebhookConfig{
			Enabled:        false,
			TimeoutSeconds: 10,
		},
		API: APIConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8420,
			RateLimit: &APIRateLimitConfig{
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
		},
		Logging: *DefaultLogConfig(),
	}
}

// LoadWithCLI builds the configuration from defaults, file, environment and
// CLI arguments, then validates it eagerly.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGSEER_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.Validate()
}

// GetConfigPath resolves the config file location from environment
func GetConfigPath() string {
	if configFile := os.Getenv("LOGSEER_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGSEER_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGSEER_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logseer.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logseer.toml")
	}

	return "logseer.toml"
}

// EnabledSources returns the sources that should be processed this run
func (c *Config) EnabledSources() []SourceConfig {
	var enabled []SourceConfig
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}
