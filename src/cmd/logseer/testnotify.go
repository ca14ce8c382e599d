// FILE: logseer/src/cmd/logseer/testnotify.go
package main

import (
	"context"
	"fmt"
	"time"

	"logseer/src/internal/alert"
	"logseer/src/internal/config"
	"logseer/src/internal/core"
)

// runTestNotify sends a synthetic alert over every enabled channel so an
// operator can verify delivery end to end.
func runTestNotify(ctx context.Context, cfg *config.Config) error {
	var email *alert.EmailNotifier
	notifiers := buildNotifiers(cfg, &email)
	if len(notifiers) == 0 {
		return fmt.Errorf("no notification channels enabled")
	}

	health := 10
	rec := core.AlertRecord{
		Timestamp:   time.Now().UTC(),
		AlertType:   "test",
		Severity:    core.SeverityInfo,
		Message:     "Test notification from logseer",
		HealthScore: &health,
	}

	var firstErr error
	for _, n := range notifiers {
		nctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := n.Notify(nctx, rec)
		cancel()

		if err != nil {
			output.Error("Channel %s failed: %v\n", n.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		output.Print("Channel %s OK\n", n.Name())
	}
	return firstErr
}
