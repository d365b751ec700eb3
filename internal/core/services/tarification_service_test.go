package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/core/domain"

	"github.com/goccy/go-json"
)

// fakeGateway is a scriptable NeolianeGateway for service tests
type fakeGateway struct {
	products    []domain.Product
	productsErr error

	cartResult *neoliane.CartResult
	cartErr    error
	subResult  *neoliane.SubscriptionResult
	subErr     error

	docContent string
	documents  []domain.ProductDocument

	cartCalls int
	subCalls  int
}

func (f *fakeGateway) Ping(ctx context.Context) error { return nil }

func (f *fakeGateway) GetProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.productsErr
}

func (f *fakeGateway) GetProductDocuments(ctx context.Context, gammeID int) ([]domain.ProductDocument, error) {
	return f.documents, nil
}

func (f *fakeGateway) GetDocumentContent(ctx context.Context, gammeID, documentID int) (string, error) {
	return f.docContent, nil
}

func (f *fakeGateway) CreateCart(ctx context.Context, cart *neoliane.CartRequest) (*neoliane.CartResult, error) {
	f.cartCalls++
	return f.cartResult, f.cartErr
}

func (f *fakeGateway) CreateSubscription(ctx context.Context, sub *neoliane.SubscriptionRequest) (*neoliane.SubscriptionResult, error) {
	f.subCalls++
	return f.subResult, f.subErr
}

func (f *fakeGateway) SubmitStepConcern(ctx context.Context, subID, stepID string, form *neoliane.StepConcernRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeGateway) SubmitStepBank(ctx context.Context, subID, stepID string, form *neoliane.StepBankRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeGateway) GetSubscription(ctx context.Context, subID string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeGateway) UploadDocument(ctx context.Context, subID string, document interface{}) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeGateway) ValidateContract(ctx context.Context, contractID string) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeGateway) DownloadPrefilledDocuments(ctx context.Context, subID string) ([]byte, error) {
	return nil, nil
}

func futureDate() string {
	return time.Now().AddDate(0, 1, 0).Format("2006-01-02")
}

func label(s string) *string { return &s }

func quoteRequest() *domain.TarificationRequest {
	return &domain.TarificationRequest{
		DateEffet:      futureDate(),
		CodePostal:     "75001",
		AnneeNaissance: time.Now().Year() - 40,
		Regime:         "Salarié",
	}
}

func TestTarifyPricesCatalog(t *testing.T) {
	gw := &fakeGateway{
		products: []domain.Product{
			{GammeID: 1, GammeLabel: label("Santé Optima"), Type: "sante"},
			{GammeID: 2, GammeLabel: label("Santé Dynamique"), Type: "sante"},
			{GammeID: 3, GammeLabel: label("Santé Performance"), Type: "sante"},
		},
	}
	svc := NewTarificationService(gw, nil)

	resp, err := svc.Tarify(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Degraded {
		t.Fatal("expected live pricing, got degraded response")
	}
	if resp.QuoteRef == "" {
		t.Fatal("expected a quote reference")
	}
	if len(resp.Offres) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(resp.Offres))
	}

	// Ascending by price: dynamique (0.8) < performance (1.3) < optima (2.0)
	if resp.Offres[0].Nom != "Santé Dynamique" {
		t.Fatalf("expected cheapest offer first, got %s", resp.Offres[0].Nom)
	}
	if resp.Offres[2].Nom != "Santé Optima" {
		t.Fatalf("expected most expensive offer last, got %s", resp.Offres[2].Nom)
	}
	for i := 1; i < len(resp.Offres); i++ {
		if resp.Offres[i].Prix < resp.Offres[i-1].Prix {
			t.Fatalf("offers not sorted ascending at index %d", i)
		}
	}

	// Age 40, Salarié: base 45, dynamique ×0.8 = 36
	if resp.Offres[0].Prix != 36 {
		t.Fatalf("expected 36.00 for the dynamique tier, got %.2f", resp.Offres[0].Prix)
	}
}

func TestTarifyFallbackOnGatewayError(t *testing.T) {
	gw := &fakeGateway{productsErr: errors.New("boom")}
	svc := NewTarificationService(gw, nil)

	resp, err := svc.Tarify(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("catalog failure must not surface: %v", err)
	}

	if !resp.Degraded {
		t.Fatal("expected degraded response")
	}
	if resp.Message == "" {
		t.Fatal("expected a degraded-mode message")
	}
	if len(resp.Offres) != 3 {
		t.Fatalf("expected 3 fallback offers, got %d", len(resp.Offres))
	}

	wantNames := []string{"Formule Essentielle", "Formule Confort", "Formule Premium"}
	for i, want := range wantNames {
		if resp.Offres[i].Nom != want {
			t.Fatalf("offer %d: expected %s, got %s", i, want, resp.Offres[i].Nom)
		}
	}
	for _, offre := range resp.Offres {
		if len(offre.Garanties) == 0 {
			t.Fatalf("fallback offer %s has no guarantees", offre.Nom)
		}
	}
}

func TestTarifyFallbackOnEmptyCatalog(t *testing.T) {
	gw := &fakeGateway{products: nil}
	svc := NewTarificationService(gw, nil)

	resp, err := svc.Tarify(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Degraded {
		t.Fatal("expected degraded response for empty catalog")
	}
}

func TestTarifyRejectsPastDate(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewTarificationService(gw, nil)

	req := quoteRequest()
	req.DateEffet = "2020-01-01"

	_, err := svc.Tarify(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error for past date")
	}

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if validationErr.Field != "dateEffet" {
		t.Fatalf("expected dateEffet field, got %s", validationErr.Field)
	}
}

func TestTarifySkipsUnnamedProducts(t *testing.T) {
	gw := &fakeGateway{
		products: []domain.Product{
			{GammeID: 1, GammeLabel: nil, Type: "sante"},
			{GammeID: 2, GammeLabel: label("Santé Confort Plus"), Type: "sante"},
		},
	}
	svc := NewTarificationService(gw, nil)

	resp, err := svc.Tarify(context.Background(), quoteRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Offres) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(resp.Offres))
	}
}

func TestMatchTierFirstMatchWins(t *testing.T) {
	// "performance" is declared before "pulse": a label carrying both
	// resolves to the performance rule
	rule := matchTier("Santé Performance Pulse")
	if rule.multiplier != 1.3 {
		t.Fatalf("expected performance multiplier 1.3, got %.2f", rule.multiplier)
	}
}

func TestMatchTierCaseInsensitive(t *testing.T) {
	rule := matchTier("SANTÉ DYNAMIQUE")
	if rule.multiplier != 0.8 {
		t.Fatalf("expected dynamique multiplier 0.8, got %.2f", rule.multiplier)
	}
}

func TestMatchTierDefault(t *testing.T) {
	rule := matchTier("Gamme inconnue")
	if rule.multiplier != 1.0 {
		t.Fatalf("expected default multiplier 1.0, got %.2f", rule.multiplier)
	}
	if len(rule.garanties) == 0 {
		t.Fatal("default tier must carry guarantees")
	}
}

func TestMatchTierEnergikVariants(t *testing.T) {
	for _, lbl := range []string{"Santé Énergik", "sante energik"} {
		rule := matchTier(lbl)
		if rule.multiplier != 1.4 {
			t.Fatalf("label %q: expected multiplier 1.4, got %.2f", lbl, rule.multiplier)
		}
	}
}

func TestFilterHealthKeepsAllWhenNoneMatch(t *testing.T) {
	products := []domain.Product{
		{GammeID: 1, GammeLabel: label("Prévoyance Pro"), Type: "prevoyance"},
		{GammeID: 2, GammeLabel: label("Auto Tranquille"), Type: "auto"},
	}
	if got := filterHealth(products); len(got) != 2 {
		t.Fatalf("expected full catalog when no health product matches, got %d", len(got))
	}
}

func TestFilterHealthSelectsByTypeAndLabel(t *testing.T) {
	products := []domain.Product{
		{GammeID: 1, GammeLabel: label("Prévoyance Pro"), Type: "prevoyance"},
		{GammeID: 2, GammeLabel: label("Optima Santé"), Type: "autre"},
		{GammeID: 3, GammeLabel: label("Dynamique"), Type: "sante"},
	}
	got := filterHealth(products)
	if len(got) != 2 {
		t.Fatalf("expected 2 health products, got %d", len(got))
	}
}
