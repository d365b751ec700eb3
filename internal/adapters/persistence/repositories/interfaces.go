package repositories

import (
	"context"

	"xcr-courtage/internal/adapters/persistence/models"
)

// AdvisorRepository defines advisor data access
type AdvisorRepository interface {
	Create(ctx context.Context, advisor *models.Advisor) error
	GetByID(ctx context.Context, id uint) (*models.Advisor, error)
	GetByEmail(ctx context.Context, email string) (*models.Advisor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, advisor *models.Advisor) error
	List(ctx context.Context, offset, limit int) ([]*models.Advisor, int64, error)
}

// RefreshTokenRepository defines refresh token data access
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByAdvisorID(ctx context.Context, advisorID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// LeadRepository defines lead data access
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByQuoteRef(ctx context.Context, quoteRef string) (*models.Lead, error)
	List(ctx context.Context, offset, limit int) ([]*models.Lead, int64, error)
	ListDegraded(ctx context.Context, offset, limit int) ([]*models.Lead, int64, error)
}

// SubscriptionRepository defines subscription tracking data access
type SubscriptionRepository interface {
	Create(ctx context.Context, record *models.SubscriptionRecord) error
	GetBySubscriptionID(ctx context.Context, subID string) (*models.SubscriptionRecord, error)
	UpdateProgress(ctx context.Context, subID, status, step string) error
	List(ctx context.Context, offset, limit int) ([]*models.SubscriptionRecord, int64, error)
	MarkStaleAbandoned(ctx context.Context, olderThanDays int) (int64, error)
}
