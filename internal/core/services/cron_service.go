package services

import (
	"context"
	"log"
	"time"

	"xcr-courtage/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// staleFlowDays is how long a pending flow may sit untouched before it is
// considered abandoned
const staleFlowDays = 7

// CronService runs scheduled maintenance jobs
type CronService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	subRepo          repositories.SubscriptionRepository
	cron             *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	subRepo repositories.SubscriptionRepository,
) *CronService {
	return &CronService{
		refreshTokenRepo: refreshTokenRepo,
		subRepo:          subRepo,
		cron:             cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Purge expired and revoked refresh tokens nightly at 03:00
	s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)

	// Flag stale pending flows as abandoned nightly at 03:30
	s.cron.AddFunc("30 3 * * *", s.markStaleFlows)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("❌ Refresh token purge error: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Purged %d expired refresh tokens", count)
	}
}

func (s *CronService) markStaleFlows() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.subRepo.MarkStaleAbandoned(ctx, staleFlowDays)
	if err != nil {
		log.Printf("❌ Stale flow check error: %v", err)
		return
	}
	if count > 0 {
		log.Printf("⚠️ Marked %d stale subscription flows as abandoned", count)
	}
}
