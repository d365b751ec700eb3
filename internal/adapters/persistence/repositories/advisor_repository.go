package repositories

import (
	"context"

	"xcr-courtage/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// advisorRepository implements AdvisorRepository
type advisorRepository struct {
	db *gorm.DB
}

// NewAdvisorRepository creates a new advisor repository
func NewAdvisorRepository(db *gorm.DB) AdvisorRepository {
	return &advisorRepository{db: db}
}

// Create creates a new advisor
func (r *advisorRepository) Create(ctx context.Context, advisor *models.Advisor) error {
	return r.db.WithContext(ctx).Create(advisor).Error
}

// GetByID gets an advisor by ID
func (r *advisorRepository) GetByID(ctx context.Context, id uint) (*models.Advisor, error) {
	var advisor models.Advisor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&advisor).Error
	if err != nil {
		return nil, err
	}
	return &advisor, nil
}

// GetByEmail gets an advisor by email
func (r *advisorRepository) GetByEmail(ctx context.Context, email string) (*models.Advisor, error) {
	var advisor models.Advisor
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&advisor).Error
	if err != nil {
		return nil, err
	}
	return &advisor, nil
}

// ExistsByEmail checks if an email is already registered
func (r *advisorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Advisor{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Update updates an advisor
func (r *advisorRepository) Update(ctx context.Context, advisor *models.Advisor) error {
	return r.db.WithContext(ctx).Save(advisor).Error
}

// List lists advisors with pagination
func (r *advisorRepository) List(ctx context.Context, offset, limit int) ([]*models.Advisor, int64, error) {
	var advisors []*models.Advisor
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Advisor{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&advisors).Error
	if err != nil {
		return nil, 0, err
	}

	return advisors, total, nil
}
