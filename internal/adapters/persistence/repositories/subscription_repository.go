package repositories

import (
	"context"
	"time"

	"xcr-courtage/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// subscriptionRepository implements SubscriptionRepository
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create stores a new flow record
func (r *subscriptionRepository) Create(ctx context.Context, record *models.SubscriptionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetBySubscriptionID finds a record by the remote subscription id
func (r *subscriptionRepository) GetBySubscriptionID(ctx context.Context, subID string) (*models.SubscriptionRecord, error) {
	var record models.SubscriptionRecord
	err := r.db.WithContext(ctx).Where("subscription_id = ?", subID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateProgress updates the tracked step and status of a flow
func (r *subscriptionRepository) UpdateProgress(ctx context.Context, subID, status, step string) error {
	return r.db.WithContext(ctx).
		Model(&models.SubscriptionRecord{}).
		Where("subscription_id = ?", subID).
		Updates(map[string]interface{}{
			"status": status,
			"step":   step,
		}).Error
}

// List lists flow records with pagination, newest first
func (r *subscriptionRepository) List(ctx context.Context, offset, limit int) ([]*models.SubscriptionRecord, int64, error) {
	var records []*models.SubscriptionRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.SubscriptionRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// MarkStaleAbandoned flags pending flows untouched for olderThanDays as
// abandoned and returns how many were flagged
func (r *subscriptionRepository) MarkStaleAbandoned(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionRecord{}).
		Where("status = ? AND updated_at < ?", models.FlowStatusPending, cutoff).
		Update("status", models.FlowStatusAbandoned)
	return result.RowsAffected, result.Error
}
