package services

import (
	"context"
	"errors"

	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/core/domain"

	"gorm.io/gorm"
)

// LeadService exposes quote leads and tracked subscription flows to advisors
type LeadService struct {
	leadRepo repositories.LeadRepository
	subRepo  repositories.SubscriptionRepository
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo repositories.LeadRepository, subRepo repositories.SubscriptionRepository) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		subRepo:  subRepo,
	}
}

// ListLeads lists quote leads, newest first
func (s *LeadService) ListLeads(ctx context.Context, offset, limit int, degradedOnly bool) ([]*models.Lead, int64, error) {
	if degradedOnly {
		return s.leadRepo.ListDegraded(ctx, offset, limit)
	}
	return s.leadRepo.List(ctx, offset, limit)
}

// GetLead gets a lead by its quote reference
func (s *LeadService) GetLead(ctx context.Context, quoteRef string) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByQuoteRef(ctx, quoteRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

// ListFlows lists tracked subscription flows, newest first
func (s *LeadService) ListFlows(ctx context.Context, offset, limit int) ([]*models.SubscriptionRecord, int64, error) {
	return s.subRepo.List(ctx, offset, limit)
}

// GetFlow gets a tracked flow by its remote subscription id
func (s *LeadService) GetFlow(ctx context.Context, subscriptionID string) (*models.SubscriptionRecord, error) {
	record, err := s.subRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, err
	}
	return record, nil
}
