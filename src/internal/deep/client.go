// FILE: logseer/src/internal/deep/client.go
package deep

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"logseer/src/internal/config"
	"logseer/src/internal/core"
	"logseer/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const anthropicVersion = "2023-06-01"

// Client calls the external Anthropic Messages API for deep log analysis.
// Every failure mode degrades to a locally synthesized result; Analyze
// never fails the cycle.
type Client struct {
	config  *config.DeepAnalysisConfig
	client  *fasthttp.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewClient creates a deep analyzer client from configuration
func NewClient(cfg *config.DeepAnalysisConfig, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("deep analysis options cannot be nil")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	c := &Client{
		config: cfg,
		client: &fasthttp.Client{
			MaxConnsPerHost:     2,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		logger:  logger,
	}

	return c, nil
}

// Analyze runs deep analysis over the newly read text. History provides
// trend context (most recent analyses for the same source). On any failure
// the returned analysis is the local fallback, never nil.
func (c *Client) Analyze(content string, metrics core.LocalMetrics, history []core.AnalysisRecord) *core.DeepAnalysis {
	if !c.limiter.Allow() {
		c.logger.Warn("msg", "Deep analysis request over budget",
			"component", "deep_analyzer",
			"requests_per_minute", c.config.RequestsPerMinute)
		return Fallback(metrics, "API request budget exceeded")
	}

	prompt := BuildPrompt(content, metrics, history, c.config.MaxPromptChars)

	body, err := json.Marshal(messagesRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Fallback(metrics, fmt.Sprintf("failed to encode request: %v", err))
	}

	text, err := c.send(body)
	if err != nil {
		c.logger.Error("msg", "Deep analysis call failed",
			"component", "deep_analyzer",
			"log_file", metrics.LogFile,
			"error", err)
		return Fallback(metrics, fmt.Sprintf("API error: %v", err))
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		c.logger.Error("msg", "Deep analysis response invalid",
			"component", "deep_analyzer",
			"log_file", metrics.LogFile,
			"error", err)
		return Fallback(metrics, fmt.Sprintf("invalid response: %v", err))
	}

	return analysis
}

// send posts the request with bounded retries. 4xx responses are not
// retried; they indicate a request problem that will not heal.
func (c *Client) send(body []byte) (string, error) {
	timeout := time.Duration(c.config.TimeoutSeconds) * time.Second
	retryDelay := time.Duration(c.config.RetryDelayMS) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
			retryDelay *= 2
			if retryDelay > timeout {
				retryDelay = timeout
			}
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(c.config.Endpoint)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.Header.Set("x-api-key", c.config.APIKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("User-Agent", fmt.Sprintf("LogSeer/%s", version.Short()))
		req.SetBody(body)

		err := c.client.DoTimeout(req, resp, timeout)

		statusCode := resp.StatusCode()
		var responseBody []byte
		if len(resp.Body()) > 0 {
			responseBody = make([]byte, len(resp.Body()))
			copy(responseBody, resp.Body())
		}

		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn("msg", "Deep analysis request failed",
				"component", "deep_analyzer",
				"attempt", attempt+1,
				"error", err)
			continue
		}

		if statusCode >= 200 && statusCode < 300 {
			var parsed messagesResponse
			if err := json.Unmarshal(responseBody, &parsed); err != nil {
				return "", fmt.Errorf("malformed API response: %w", err)
			}
			for _, block := range parsed.Content {
				if block.Type == "text" {
					return block.Text, nil
				}
			}
			return "", fmt.Errorf("API response contains no text content")
		}

		lastErr = fmt.Errorf("server returned status %d: %s", statusCode, responseBody)
		if statusCode >= 400 && statusCode < 500 {
			return "", lastErr
		}

		c.logger.Warn("msg", "Deep analysis server error",
			"component", "deep_analyzer",
			"attempt", attempt+1,
			"status_code", statusCode)
	}

	return "", lastErr
}

// parseAnalysis extracts the JSON object from the model's reply text and
// validates the required fields. Surrounding prose is tolerated.
func parseAnalysis(text string) (*core.DeepAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var analysis core.DeepAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	if !analysis.Valid() {
		return nil, fmt.Errorf("missing or out-of-range required fields (health_score=%d)", analysis.HealthScore)
	}
	return &analysis, nil
}
