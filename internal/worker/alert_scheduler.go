package worker

import (
	"context"
	"time"

	"hd-tickets/internal/service"
	"hd-tickets/pkg/logger"

	"go.uber.org/zap"
)

// AlertScheduler drives the alert engine on a fixed tick. Individual alerts
// carry their own check intervals; the tick only bounds how often due alerts
// are picked up.
type AlertScheduler interface {
	Start(ctx context.Context) error
}

type AlertSchedulerImpl struct {
	alerts   service.AlertService
	interval time.Duration
}

func NewAlertScheduler(alerts service.AlertService, interval time.Duration) AlertScheduler {
	return &AlertSchedulerImpl{
		alerts:   alerts,
		interval: interval,
	}
}

func (s *AlertSchedulerImpl) Start(ctx context.Context) error {
	go func() {
		log := logger.WithComponent("alert-scheduler")
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processed, err := s.alerts.CheckAlerts(ctx)
				if err != nil {
					log.Error("alert check cycle failed", zap.Error(err))
					continue
				}
				if processed > 0 {
					log.Info("alert check cycle finished", zap.Int("processed", processed))
				}
			}
		}
	}()
	return nil
}
