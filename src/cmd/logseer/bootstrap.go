// FILE: logseer/src/cmd/logseer/bootstrap.go
package main

import (
	"fmt"
	"strings"
	"time"

	"logseer/src/internal/alert"
	"logseer/src/internal/config"
	"logseer/src/internal/deep"
	"logseer/src/internal/monitor"
	"logseer/src/internal/storage"

	"github.com/lixenwraith/log"
)

// bootstrapMonitor wires the store, analyzers, notifiers and monitor
func bootstrapMonitor(cfg *config.Config) (*monitor.Monitor, *storage.Store, error) {
	store, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	var deepAnalyzer monitor.DeepAnalyzer
	if cfg.DeepAnalysis.Enabled {
		client, err := deep.NewClient(&cfg.DeepAnalysis, logger)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to create deep analyzer: %w", err)
		}
		deepAnalyzer = client
	}

	var email *alert.EmailNotifier
	notifiers := buildNotifiers(cfg, &email)
	dispatcher := alert.NewDispatcher(notifiers, logger)

	logger.Info("msg", "Pipeline wired",
		"sources", len(cfg.EnabledSources()),
		"deep_analysis", cfg.DeepAnalysis.Enabled,
		"channels", dispatcher.ChannelCount())

	return monitor.New(cfg, store, deepAnalyzer, dispatcher, email, logger), store, nil
}

// buildNotifiers returns the enabled channels; the email notifier is also
// handed back separately for the daily summary path.
func buildNotifiers(cfg *config.Config, email **alert.EmailNotifier) []alert.Notifier {
	var notifiers []alert.Notifier
	if cfg.Email.Enabled {
		*email = alert.NewEmailNotifier(&cfg.Email)
		notifiers = append(notifiers, *email)
	}
	if cfg.Webhook.Enabled {
		notifiers = append(notifiers, alert.NewWebhookNotifier(&cfg.Webhook))
	}
	return notifiers
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config, quiet bool) error {
	logger = log.NewLogger()

	var configArgs []string

	if quiet {
		// In quiet mode, disable ALL logging output
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")
		return logger.ApplyConfigString(configArgs...)
	}

	levelStr := cfg.Logging.Level
	if *logLevel != "" {
		levelStr = *logLevel
	}
	levelValue, err := parseLogLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	outputMode := cfg.Logging.Output
	if *logOutput != "" {
		outputMode = *logOutput
	}

	switch outputMode {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", outputMode)
	}

	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.ApplyConfigString(configArgs...)
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	if cfg.Logging.File != nil {
		*configArgs = append(*configArgs,
			fmt.Sprintf("directory=%s", cfg.Logging.File.Directory),
			fmt.Sprintf("name=%s", cfg.Logging.File.Name),
			fmt.Sprintf("max_size_mb=%d", cfg.Logging.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", cfg.Logging.File.MaxTotalSizeMB))

		if cfg.Logging.File.RetentionHours > 0 {
			*configArgs = append(*configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", cfg.Logging.File.RetentionHours))
		}
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr"

	if cfg.Logging.Console != nil && cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			output.Error("Logger shutdown error: %v\n", err)
		}
	}
}
