// FILE: logseer/src/internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Placeholder values that must be replaced before the agent will start
const apiKeyPlaceholder = "your-api-key-here"

// Validate checks the whole configuration eagerly. Invalid configuration is
// the only fatal error class; everything caught here never reaches a cycle.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no log sources configured")
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source[%d]: empty name", i)
		}
		if src.Path == "" {
			return fmt.Errorf("source '%s': empty path", src.Name)
		}
		if strings.Contains(src.Path, "..") {
			return fmt.Errorf("source '%s': path contains directory traversal", src.Name)
		}
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name '%s'", src.Name)
		}
		seen[src.Name] = true
	}

	if len(c.EnabledSources()) == 0 {
		return fmt.Errorf("no enabled log sources configured")
	}

	if c.Monitoring.CheckIntervalMinutes < 1 {
		return fmt.Errorf("check interval too small: %d minutes", c.Monitoring.CheckIntervalMinutes)
	}
	if _, err := time.Parse("15:04", c.Monitoring.DailySummaryTime); err != nil {
		return fmt.Errorf("invalid daily summary time '%s' (expected HH:MM): %w",
			c.Monitoring.DailySummaryTime, err)
	}
	if c.Monitoring.SourcePauseSeconds < 0 {
		return fmt.Errorf("source pause cannot be negative: %d", c.Monitoring.SourcePauseSeconds)
	}

	if err := c.validateThresholds(); err != nil {
		return err
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path not configured")
	}

	if c.DeepAnalysis.Enabled {
		if c.DeepAnalysis.APIKey == "" || c.DeepAnalysis.APIKey == apiKeyPlaceholder {
			return fmt.Errorf("deep analysis API key not configured")
		}
		if c.DeepAnalysis.Model == "" {
			return fmt.Errorf("deep analysis model not configured")
		}
		if c.DeepAnalysis.TimeoutSeconds < 1 {
			return fmt.Errorf("deep analysis timeout must be positive: %d", c.DeepAnalysis.TimeoutSeconds)
		}
		if c.DeepAnalysis.MaxPromptChars < 1000 {
			return fmt.Errorf("deep analysis prompt budget too small: %d chars", c.DeepAnalysis.MaxPromptChars)
		}
		if c.DeepAnalysis.RequestsPerMinute < 1 {
			return fmt.Errorf("deep analysis requests_per_minute must be positive: %d", c.DeepAnalysis.RequestsPerMinute)
		}
	}

	if c.Email.Enabled {
		if c.Email.SMTPServer == "" {
			return fmt.Errorf("email enabled but smtp_server not configured")
		}
		if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Email.SMTPPort)
		}
		if c.Email.FromEmail == "" || c.Email.ToEmail == "" {
			return fmt.Errorf("email enabled but from_email/to_email not configured")
		}
	}

	if c.Webhook.Enabled {
		parsed, err := url.Parse(c.Webhook.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("webhook enabled but URL invalid: '%s'", c.Webhook.URL)
		}
		if c.Webhook.TimeoutSeconds < 1 {
			return fmt.Errorf("webhook timeout must be positive: %d", c.Webhook.TimeoutSeconds)
		}
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			return fmt.Errorf("invalid API port: %d", c.API.Port)
		}
		if err := validateAPIAuth(c.API.Auth); err != nil {
			return err
		}
		if rl := c.API.RateLimit; rl != nil {
			if rl.RequestsPerSecond < 1 {
				return fmt.Errorf("API requests_per_second must be positive: %d", rl.RequestsPerSecond)
			}
			if rl.BurstSize < 1 {
				return fmt.Errorf("API burst_size must be positive: %d", rl.BurstSize)
			}
		}
	}

	return validateLogConfig(&c.Logging)
}

func (c *Config) validateThresholds() error {
	at := c.AnalysisThresholds
	if at.ErrorCount < 1 {
		return fmt.Errorf("analysis error_count threshold must be positive: %d", at.ErrorCount)
	}
	if at.AvgResponseTime <= 0 {
		return fmt.Errorf("analysis avg_response_time threshold must be positive: %.1f", at.AvgResponseTime)
	}
	if at.HighActivity < 1 {
		return fmt.Errorf("analysis high_activity threshold must be positive: %d", at.HighActivity)
	}
	if at.ErrorRate <= 0 || at.ErrorRate > 100 {
		return fmt.Errorf("analysis error_rate threshold out of range: %.1f", at.ErrorRate)
	}

	alt := c.AlertThresholds
	if alt.HealthScore < 1 || alt.HealthScore > 10 {
		return fmt.Errorf("alert health_score threshold out of range: %d", alt.HealthScore)
	}
	if alt.ErrorCount < 1 {
		return fmt.Errorf("alert error_count threshold must be positive: %d", alt.ErrorCount)
	}
	if alt.ResponseTime < 0 {
		return fmt.Errorf("alert response_time threshold cannot be negative: %.1f", alt.ResponseTime)
	}
	return nil
}

func validateAPIAuth(cfg *APIAuthConfig) error {
	if cfg == nil || cfg.Type == "" || cfg.Type == "none" {
		return nil
	}
	switch cfg.Type {
	case "bearer":
		if len(cfg.Tokens) == 0 && len(cfg.TokenHashes) == 0 {
			return fmt.Errorf("API bearer auth requires tokens or token_hashes")
		}
	case "jwt":
		if cfg.JWTSigningKey == "" {
			return fmt.Errorf("API jwt auth requires jwt_signing_key")
		}
	default:
		return fmt.Errorf("unknown API auth type '%s' (valid: none, bearer, jwt)", cfg.Type)
	}
	return nil
}
