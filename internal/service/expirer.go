package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultExpirerInterval = 1 * time.Hour
	// Expired invites are kept this long so acceptance can still report
	// "expired" rather than "invalid".
	defaultInviteRetention = 7 * 24 * time.Hour
)

type inviteSweeper interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// InviteExpirerService periodically deletes invites that expired without
// being accepted.
type InviteExpirerService struct {
	invites   inviteSweeper
	logger    *zap.Logger
	retention time.Duration
	now       func() time.Time

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewInviteExpirerService(invites inviteSweeper, logger *zap.Logger) *InviteExpirerService {
	return &InviteExpirerService{
		invites:   invites,
		logger:    logger,
		retention: defaultInviteRetention,
		now:       time.Now,
		interval:  defaultExpirerInterval,
		stopCh:    make(chan struct{}),
	}
}

func (s *InviteExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *InviteExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("invite expirer started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("invite expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *InviteExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *InviteExpirerService) run(ctx context.Context) {
	deleted, err := s.invites.DeleteExpired(ctx, s.now().Add(-s.retention))
	if err != nil {
		s.logger.Error("failed to delete expired invites", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("deleted expired invites", zap.Int64("count", deleted))
	}
}
