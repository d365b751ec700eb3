package repositories

import (
	"context"

	"xcr-courtage/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// leadRepository implements LeadRepository
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Create stores a new lead
func (r *leadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByQuoteRef finds a lead by its quote reference
func (r *leadRepository) GetByQuoteRef(ctx context.Context, quoteRef string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("quote_ref = ?", quoteRef).First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// List lists leads with pagination, newest first
func (r *leadRepository) List(ctx context.Context, offset, limit int) ([]*models.Lead, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Lead{}), offset, limit)
}

// ListDegraded lists leads quoted in degraded mode (fallback pricing)
func (r *leadRepository) ListDegraded(ctx context.Context, offset, limit int) ([]*models.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lead{}).Where("degraded = ?", true)
	return r.list(ctx, query, offset, limit)
}

func (r *leadRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*models.Lead, int64, error) {
	var leads []*models.Lead
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&leads).Error
	if err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}
