package services

import (
	"context"

	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/core/domain"

	"github.com/goccy/go-json"
)

// Note: AuthService implementation is in auth_service.go
// Note: TarificationService implementation is in tarification_service.go

// NeolianeGateway is the slice of the proxy client the services depend on.
// *neoliane.Client satisfies it; tests substitute fakes.
type NeolianeGateway interface {
	Ping(ctx context.Context) error
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProductDocuments(ctx context.Context, gammeID int) ([]domain.ProductDocument, error)
	GetDocumentContent(ctx context.Context, gammeID, documentID int) (string, error)
	CreateCart(ctx context.Context, cart *neoliane.CartRequest) (*neoliane.CartResult, error)
	CreateSubscription(ctx context.Context, sub *neoliane.SubscriptionRequest) (*neoliane.SubscriptionResult, error)
	SubmitStepConcern(ctx context.Context, subID, stepID string, form *neoliane.StepConcernRequest) (json.RawMessage, error)
	SubmitStepBank(ctx context.Context, subID, stepID string, form *neoliane.StepBankRequest) (json.RawMessage, error)
	GetSubscription(ctx context.Context, subID string) (json.RawMessage, error)
	UploadDocument(ctx context.Context, subID string, document interface{}) (json.RawMessage, error)
	ValidateContract(ctx context.Context, contractID string) (json.RawMessage, error)
	DownloadPrefilledDocuments(ctx context.Context, subID string) ([]byte, error)
}
