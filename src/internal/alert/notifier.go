// FILE: logseer/src/internal/alert/notifier.go
package alert

import (
	"context"
	"time"

	"logseer/src/internal/core"

	"github.com/lixenwraith/log"
)

// Notifier delivers one alert over a single channel
type Notifier interface {
	Notify(ctx context.Context, rec core.AlertRecord) error
	Name() string
}

// Dispatcher fans one alert out to every configured channel. Delivery is
// best effort: a failing channel is logged and never blocks the cycle or
// the other channels.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *log.Logger
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(notifiers []Notifier, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   30 * time.Second,
		logger:    logger,
	}
}

// Dispatch delivers the alert to every channel sequentially
func (d *Dispatcher) Dispatch(ctx context.Context, rec core.AlertRecord) {
	for _, n := range d.notifiers {
		nctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := n.Notify(nctx, rec)
		cancel()

		if err != nil {
			d.logger.Error("msg", "Alert delivery failed",
				"component", "alert",
				"channel", n.Name(),
				"severity", rec.Severity,
				"error", err)
			continue
		}

		d.logger.Info("msg", "Alert delivered",
			"component", "alert",
			"channel", n.Name(),
			"severity", rec.Severity,
			"log_file", rec.LogFile)
	}
}

// ChannelCount returns the number of configured channels
func (d *Dispatcher) ChannelCount() int {
	return len(d.notifiers)
}
