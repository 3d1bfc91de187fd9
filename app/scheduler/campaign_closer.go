// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/usbest/usbest-backend/repository"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

var campaignsClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "usbest_tester_campaigns_closed_total",
	Help: "Tester campaigns closed after their deadline",
})

// CampaignCloser periodically closes tester campaigns whose deadline has passed
type CampaignCloser struct {
	campaignRepo repository.TesterCampaignRepository
	logger       *zap.Logger
	interval     time.Duration
	now          func() time.Time
}

// NewCampaignCloser creates a closer running every interval (one minute when not positive)
func NewCampaignCloser(campaignRepo repository.TesterCampaignRepository, interval time.Duration, logger *zap.Logger) *CampaignCloser {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CampaignCloser{
		campaignRepo: campaignRepo,
		logger:       logger,
		interval:     interval,
		now:          utils.UTCNow,
	}
}

// Start launches the loop in a background goroutine and returns a stop function
func (s *CampaignCloser) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *CampaignCloser) runOnce(ctx context.Context) int64 {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	closed, err := s.campaignRepo.CloseExpired(runCtx, s.now())
	if err != nil {
		s.logger.Warn("scheduler: closing expired campaigns failed", zap.Error(err))
		return 0
	}
	if closed > 0 {
		campaignsClosedTotal.Add(float64(closed))
		s.logger.Info("scheduler: closed expired campaigns", zap.Int64("count", closed))
	}
	return closed
}
