// FILE: logseer/src/internal/config/validation_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := defaults()
	cfg.Sources = []SourceConfig{
		{Name: "nginx", Path: "/var/log/nginx/access.log", Enabled: true},
	}
	cfg.DeepAnalysis.APIKey = "sk-test-key"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Run("ValidConfigPasses", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("NoSources", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = nil
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no log sources")
	})

	t.Run("EmptySourceName", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{{Path: "/var/log/x.log", Enabled: true}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("DuplicateSourceNames", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{
			{Name: "app", Path: "/var/log/a.log", Enabled: true},
			{Name: "app", Path: "/var/log/b.log", Enabled: true},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate source name")
	})

	t.Run("PathTraversalRejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources = []SourceConfig{
			{Name: "sneaky", Path: "/var/log/../../etc/shadow", Enabled: true},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "traversal")
	})

	t.Run("AllSourcesDisabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources[0].Enabled = false
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no enabled log sources")
	})

	t.Run("IntervalTooSmall", func(t *testing.T) {
		cfg := validConfig()
		cfg.Monitoring.CheckIntervalMinutes = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadSummaryTime", func(t *testing.T) {
		cfg := validConfig()
		cfg.Monitoring.DailySummaryTime = "25:99"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "daily summary time")
	})

	t.Run("PlaceholderAPIKeyRejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeepAnalysis.APIKey = "your-api-key-here"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})

	t.Run("MissingAPIKeyIgnoredWhenDisabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeepAnalysis.Enabled = false
		cfg.DeepAnalysis.APIKey = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("PromptBudgetTooSmall", func(t *testing.T) {
		cfg := validConfig()
		cfg.DeepAnalysis.MaxPromptChars = 500
		assert.Error(t, cfg.Validate())
	})

	t.Run("EmailRequiresServer", func(t *testing.T) {
		cfg := validConfig()
		cfg.Email.Enabled = true
		cfg.Email.FromEmail = "agent@example.com"
		cfg.Email.ToEmail = "ops@example.com"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "smtp_server")
	})

	t.Run("WebhookRequiresHTTPURL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Webhook.Enabled = true
		cfg.Webhook.URL = "ftp://example.com/hook"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "URL invalid")
	})

	t.Run("InvalidThresholds", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Config)
		}{
			{"ZeroErrorCount", func(c *Config) { c.AnalysisThresholds.ErrorCount = 0 }},
			{"NegativeResponseTime", func(c *Config) { c.AnalysisThresholds.AvgResponseTime = -1 }},
			{"ErrorRateOver100", func(c *Config) { c.AnalysisThresholds.ErrorRate = 150 }},
			{"HealthScoreOutOfRange", func(c *Config) { c.AlertThresholds.HealthScore = 11 }},
			{"ZeroAlertErrorCount", func(c *Config) { c.AlertThresholds.ErrorCount = 0 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := validConfig()
				tt.mutate(cfg)
				assert.Error(t, cfg.Validate())
			})
		}
	})
}

func TestValidateAPIAuth(t *testing.T) {
	t.Run("NilIsOpen", func(t *testing.T) {
		assert.NoError(t, validateAPIAuth(nil))
	})

	t.Run("NoneIsOpen", func(t *testing.T) {
		assert.NoError(t, validateAPIAuth(&APIAuthConfig{Type: "none"}))
	})

	t.Run("BearerNeedsTokens", func(t *testing.T) {
		assert.Error(t, validateAPIAuth(&APIAuthConfig{Type: "bearer"}))
		assert.NoError(t, validateAPIAuth(&APIAuthConfig{Type: "bearer", Tokens: []string{"abc"}}))
		assert.NoError(t, validateAPIAuth(&APIAuthConfig{Type: "bearer", TokenHashes: []string{"$2a$10$x"}}))
	})

	t.Run("JWTNeedsSigningKey", func(t *testing.T) {
		assert.Error(t, validateAPIAuth(&APIAuthConfig{Type: "jwt"}))
		assert.NoError(t, validateAPIAuth(&APIAuthConfig{Type: "jwt", JWTSigningKey: "secret"}))
	})

	t.Run("UnknownType", func(t *testing.T) {
		assert.Error(t, validateAPIAuth(&APIAuthConfig{Type: "oauth"}))
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Run("ExplicitFile", func(t *testing.T) {
		t.Setenv("LOGSEER_CONFIG_FILE", "/etc/logseer/custom.toml")
		assert.Equal(t, "/etc/logseer/custom.toml", GetConfigPath())
	})

	t.Run("RelativeFileWithDir", func(t *testing.T) {
		t.Setenv("LOGSEER_CONFIG_FILE", "agent.toml")
		t.Setenv("LOGSEER_CONFIG_DIR", "/etc/logseer")
		assert.Equal(t, "/etc/logseer/agent.toml", GetConfigPath())
	})

	t.Run("DirOnly", func(t *testing.T) {
		t.Setenv("LOGSEER_CONFIG_FILE", "")
		t.Setenv("LOGSEER_CONFIG_DIR", "/etc/logseer")
		assert.Equal(t, "/etc/logseer/logseer.toml", GetConfigPath())
	})
}
