// FILE: logseer/src/cmd/logseer/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
)

// Command-line flags
var (
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	quiet       = flag.Bool("quiet", false, "Suppress console output")

	// One-shot modes
	runOnce    = flag.Bool("once", false, "Run one monitoring cycle and exit")
	runSummary = flag.Bool("summary", false, "Build and send the daily summary, then exit")
	testNotify = flag.Bool("test-notify", false, "Send a test alert to every channel, then exit")

	// Logging overrides
	logOutput = flag.String("log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	logLevel  = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "LogSeer - Unattended Log Monitoring Agent\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")

	fmt.Fprintf(os.Stderr, "\nGeneral:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress console output\n")

	fmt.Fprintf(os.Stderr, "\nModes:\n")
	fmt.Fprintf(os.Stderr, "  -once\n\tRun one monitoring cycle and exit\n")
	fmt.Fprintf(os.Stderr, "  -summary\n\tBuild and send the daily summary, then exit\n")
	fmt.Fprintf(os.Stderr, "  -test-notify\n\tSend a test alert to every channel, then exit\n")

	fmt.Fprintf(os.Stderr, "\nLogging:\n")
	fmt.Fprintf(os.Stderr, "  -log-output string\n\tLog output: file, stdout, stderr, both, none (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Run the continuous monitoring loop\n")
	fmt.Fprintf(os.Stderr, "  %s --config /etc/logseer.toml\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Single cycle, useful from cron\n")
	fmt.Fprintf(os.Stderr, "  %s --once\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Verify notification channels\n")
	fmt.Fprintf(os.Stderr, "  %s --test-notify\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGSEER_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGSEER_CONFIG_DIR   Config directory\n")
}

func parseFlags() error {
	flag.Parse()

	if *logOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[*logOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", *logOutput)
		}
	}

	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	modes := 0
	for _, m := range []bool{*runOnce, *runSummary, *testNotify} {
		if m {
			modes++
		}
	}
	if modes > 1 {
		return fmt.Errorf("at most one of -once, -summary, -test-notify may be given")
	}

	return nil
}
