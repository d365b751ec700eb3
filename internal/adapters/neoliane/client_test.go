package neoliane

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"xcr-courtage/internal/core/domain"

	"github.com/goccy/go-json"
)

// proxyStub emulates the remote proxy: action test and auth always succeed,
// api_call answers are scripted per endpoint.
type proxyStub struct {
	authCalls int
	apiCalls  int
	answers   map[string]string
	expiresIn int64
}

func (p *proxyStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req proxyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch req.Action {
		case actionTest:
			w.Write([]byte(`{"success":true}`))
		case actionAuth:
			p.authCalls++
			expiresIn := p.expiresIn
			if expiresIn == 0 {
				expiresIn = 3600
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":      true,
				"access_token": "tok-1",
				"expires_in":   expiresIn,
			})
		case actionAPICall:
			p.apiCalls++
			answer, ok := p.answers[req.Endpoint]
			if !ok {
				w.Write([]byte(`{"success":false,"error":"unknown endpoint"}`))
				return
			}
			w.Write([]byte(answer))
		default:
			w.Write([]byte(`{"success":false,"error":"unknown action"}`))
		}
	}
}

func newTestClient(t *testing.T, stub *proxyStub) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL, "user-key"), server
}

func TestPingHTMLPrologueIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<!DOCTYPE html><html><body>404</body></html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user-key")
	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error for HTML body")
	}

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestAccessTokenCachedWithinMargin(t *testing.T) {
	stub := &proxyStub{}
	client, _ := newTestClient(t, stub)

	tok1, err := client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok2, err := client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tok1 != "tok-1" || tok2 != "tok-1" {
		t.Fatalf("expected tok-1, got %q / %q", tok1, tok2)
	}
	if stub.authCalls != 1 {
		t.Fatalf("expected a single auth call, got %d", stub.authCalls)
	}
}

func TestAccessTokenRefreshedNearExpiry(t *testing.T) {
	// 60 seconds is inside the five-minute refresh margin
	stub := &proxyStub{expiresIn: 60}
	client, _ := newTestClient(t, stub)

	if _, err := client.AccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.AccessToken(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.authCalls != 2 {
		t.Fatalf("expected re-authentication for a near-expiry token, got %d auth calls", stub.authCalls)
	}
}

func TestAccessTokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req proxyRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Action == actionTest {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error":"invalid user key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.AccessToken(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}

	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if authErr.Reason != "invalid user key" {
		t.Fatalf("expected upstream reason, got %q", authErr.Reason)
	}
}

func TestNormalizeExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Relative seconds
	got := normalizeExpiry(3600, now)
	if !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected now+1h, got %v", got)
	}

	// Absolute epoch
	epoch := now.Add(24 * time.Hour).Unix()
	got = normalizeExpiry(epoch, now)
	if got.Unix() != epoch {
		t.Fatalf("expected epoch %d, got %d", epoch, got.Unix())
	}
}

func TestGetProductsEnvelopedArray(t *testing.T) {
	stub := &proxyStub{
		answers: map[string]string{
			"/nws/public/v1/api/products": `{"success":true,"data":{"status":true,"value":[{"gammeId":538,"gammeLabel":"Santé Dynamique","type":"sante"}]}}`,
		},
	}
	client, _ := newTestClient(t, stub)

	products, err := client.GetProducts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].GammeID != 538 || *products[0].GammeLabel != "Santé Dynamique" {
		t.Fatalf("unexpected product: %+v", products[0])
	}
}

func TestDecodeCatalogKeyedWrapper(t *testing.T) {
	raw := json.RawMessage(`{"status":true,"value":{"products":[{"gammeId":1,"gammeLabel":"A","type":"sante"}]}}`)
	products, err := decodeCatalog(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].GammeID != 1 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestDecodeCatalogIndexKeyedMap(t *testing.T) {
	raw := json.RawMessage(`{"status":true,"value":{"1":{"gammeId":20,"gammeLabel":"B","type":"sante"},"0":{"gammeId":10,"gammeLabel":"A","type":"sante"}}}`)
	products, err := decodeCatalog(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	// Keys are sorted, so "0" comes first
	if products[0].GammeID != 10 || products[1].GammeID != 20 {
		t.Fatalf("expected key-sorted order, got %+v", products)
	}
}

func TestDecodeCatalogBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"gammeId":5,"gammeLabel":"C","type":"sante"}]`)
	products, err := decodeCatalog(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].GammeID != 5 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestDecodeCatalogUnknownShape(t *testing.T) {
	raw := json.RawMessage(`{"status":true,"value":"not a catalog"}`)
	if _, err := decodeCatalog(raw); !errors.Is(err, domain.ErrCatalogShape) {
		t.Fatalf("expected ErrCatalogShape, got %v", err)
	}
}

func TestCreateCartUnwrapsValue(t *testing.T) {
	stub := &proxyStub{
		answers: map[string]string{
			"/nws/public/v1/api/cart": `{"success":true,"data":{"status":true,"value":{"lead_id":"L1","token":"T1"}}}`,
		},
	}
	client, _ := newTestClient(t, stub)

	result, err := client.CreateCart(context.Background(), &CartRequest{TotalAmount: "36"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LeadID != "L1" || result.Token != "T1" {
		t.Fatalf("unexpected cart result: %+v", result)
	}
}

func TestCallDownstreamFailure(t *testing.T) {
	stub := &proxyStub{
		answers: map[string]string{
			"/nws/public/v1/api/cart": `{"success":true,"data":{"status":false,"error":"panier invalide"}}`,
		},
	}
	client, _ := newTestClient(t, stub)

	_, err := client.CreateCart(context.Background(), &CartRequest{})
	if err == nil {
		t.Fatal("expected downstream error")
	}
	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T: %v", err, err)
	}
	if appErr.Message != "panier invalide" {
		t.Fatalf("unexpected message: %q", appErr.Message)
	}
}

func TestCallEmptyEnvelope(t *testing.T) {
	stub := &proxyStub{
		answers: map[string]string{
			"/nws/public/v1/api/cart": `{"success":true,"data":{"status":true}}`,
		},
	}
	client, _ := newTestClient(t, stub)

	_, err := client.CreateCart(context.Background(), &CartRequest{})
	if !errors.Is(err, domain.ErrEmptyEnvelope) {
		t.Fatalf("expected ErrEmptyEnvelope, got %v", err)
	}
}

func TestRequestProxyFailureIsApplicationError(t *testing.T) {
	stub := &proxyStub{
		answers: map[string]string{
			"/nws/public/v1/api/subscription": `{"success":false,"error":"lead expiré"}`,
		},
	}
	client, _ := newTestClient(t, stub)

	_, err := client.CreateSubscription(context.Background(), &SubscriptionRequest{LeadID: "L1"})
	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T: %v", err, err)
	}
	if appErr.Message != "lead expiré" {
		t.Fatalf("unexpected message: %q", appErr.Message)
	}
}

func TestFlattenAPIErrorString(t *testing.T) {
	if got := flattenAPIError(json.RawMessage(`"simple message"`)); got != "simple message" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFlattenAPIErrorProfileFields(t *testing.T) {
	raw := json.RawMessage(`{"profile":{"zipcode":["code postal invalide"],"date_effect":"date requise"}}`)
	got := flattenAPIError(raw)
	want := "Erreurs de validation: date_effect: date requise; zipcode: code postal invalide"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFlattenAPIErrorMessageField(t *testing.T) {
	raw := json.RawMessage(`{"message":"accès refusé"}`)
	if got := flattenAPIError(raw); got != "accès refusé" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestFlattenAPIErrorNull(t *testing.T) {
	if got := flattenAPIError(json.RawMessage(`null`)); got != "" {
		t.Fatalf("expected empty string for null, got %q", got)
	}
}
