package service

import (
	"context"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

// QueueMonitor periodically logs the queue snapshot while work is in progress.
type QueueMonitor struct {
	interval time.Duration
	queue    core.QueueService
	logger   logging.Logger
	busy     bool
}

func NewQueueMonitor(interval time.Duration, queue core.QueueService, logger logging.Logger) *QueueMonitor {
	return &QueueMonitor{
		interval: interval,
		queue:    queue,
		logger:   logger,
	}
}

func (m *QueueMonitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.report()
		}
	}
}

func (m *QueueMonitor) report() {
	status := m.queue.Status()
	if status.IsProcessing {
		m.busy = true
		m.logger.Info("Queue status",
			"pending", status.PendingCount,
			"processing", status.CurrentProcessing,
		)
		return
	}
	if m.busy {
		m.busy = false
		m.logger.Info("Queue drained")
	}
}
