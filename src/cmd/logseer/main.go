// FILE: logseer/src/cmd/logseer/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logseer/src/internal/api"
	"logseer/src/internal/config"
	"logseer/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(*quiet)

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *configFile != "" {
		os.Setenv("LOGSEER_CONFIG_FILE", *configFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		if *configFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", *configFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}

	if err := initializeLogger(cfg, *quiet); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "LogSeer starting",
		"version", version.String(),
		"config_file", *configFile,
		"sources", len(cfg.EnabledSources()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mon, store, err := bootstrapMonitor(cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// One-shot modes run without the scheduler or the API server
	switch {
	case *runOnce:
		summary := mon.RunCycle(ctx)
		output.Print("Cycle complete: %d analyzed, %d skipped, %d errored, %d deep, %d alerts\n",
			summary.Analyzed, summary.Skipped, summary.Errored, summary.Deep, summary.Alerts)
		return

	case *runSummary:
		if err := mon.RunDailySummary(ctx); err != nil {
			FatalError(1, "Summary failed: %v\n", err)
		}
		output.Print("Daily summary sent\n")
		return

	case *testNotify:
		if err := runTestNotify(ctx, cfg); err != nil {
			FatalError(1, "Test notification failed: %v\n", err)
		}
		output.Print("Test notifications sent\n")
		return
	}

	if cfg.API.Enabled {
		server, err := api.NewServer(&cfg.API, store, mon, logger)
		if err != nil {
			logger.Error("msg", "Failed to create API server", "error", err)
			os.Exit(1)
		}
		if err := server.Start(ctx); err != nil {
			logger.Error("msg", "Failed to start API server", "error", err)
			os.Exit(1)
		}
	}

	go mon.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("msg", "Shutdown signal received, starting graceful shutdown...")
	cancel()

	done := make(chan struct{})
	go func() {
		mon.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		os.Exit(1)
	}
}
