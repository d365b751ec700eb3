package neoliane

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"xcr-courtage/internal/core/domain"

	"github.com/goccy/go-json"
)

// tokenRefreshMargin: a cached token is reused only while its expiry is
// further away than this margin.
const tokenRefreshMargin = 5 * time.Minute

// Client talks to the Neoliane quoting API through the remote JSON proxy.
// It owns the access token; the token cache is the only shared mutable
// state and is guarded by mu.
type Client struct {
	proxyURL string
	userKey  string
	http     *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a proxy client. userKey is the pre-provisioned API key
// sent with every authentication call.
func NewClient(proxyURL, userKey string) *Client {
	return &Client{
		proxyURL: proxyURL,
		userKey:  userKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ============================================================
// Transport
// ============================================================

// post sends one JSON POST to the proxy and returns the raw body and status.
// Bodies that start with an HTML prologue mean the proxy itself is
// misconfigured and are reported as a transport error.
func (c *Client) post(ctx context.Context, payload *proxyRequest) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &domain.TransportError{Reason: fmt.Sprintf("proxy injoignable: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &domain.TransportError{Reason: fmt.Sprintf("lecture de la réponse: %v", err)}
	}

	if looksLikeHTML(body) {
		return nil, resp.StatusCode, &domain.TransportError{
			Reason: "le proxy retourne du HTML au lieu de JSON (proxy absent ou en erreur)",
		}
	}

	return body, resp.StatusCode, nil
}

// looksLikeHTML sniffs an HTML document prologue
func looksLikeHTML(body []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(body)))
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html")
}

// Ping performs the proxy liveness probe (action "test")
func (c *Client) Ping(ctx context.Context) error {
	body, status, err := c.post(ctx, &proxyRequest{Action: actionTest})
	if err != nil {
		return err
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &domain.TransportError{Reason: fmt.Sprintf("réponse test invalide: %s", truncate(body, 200))}
	}
	if status < 200 || status >= 300 || !env.Success {
		return fmt.Errorf("%w: test action failed (HTTP %d)", domain.ErrProxyUnavailable, status)
	}
	return nil
}

// ============================================================
// Authentication
// ============================================================

// AccessToken returns the cached token while its expiry is more than five
// minutes away, otherwise probes the proxy and re-authenticates.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > tokenRefreshMargin {
		return c.token, nil
	}

	if err := c.Ping(ctx); err != nil {
		return "", &domain.AuthError{Reason: fmt.Sprintf("proxy indisponible: %v", err)}
	}

	body, status, err := c.post(ctx, &proxyRequest{Action: actionAuth, UserKey: c.userKey})
	if err != nil {
		return "", err
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &domain.TransportError{Reason: fmt.Sprintf("réponse auth invalide: %s", truncate(body, 200))}
	}

	if status < 200 || status >= 300 || !env.Success || env.AccessToken == "" {
		reason := flattenAPIError(env.Error)
		if reason == "" {
			reason = env.Message
		}
		if reason == "" {
			reason = fmt.Sprintf("authentification refusée (HTTP %d)", status)
		}
		return "", &domain.AuthError{Reason: reason}
	}

	c.token = env.AccessToken
	c.tokenExpiry = normalizeExpiry(env.ExpiresIn, time.Now())
	log.Printf("🔐 Token Neoliane renouvelé (expire %s)", c.tokenExpiry.Format(time.RFC3339))

	return c.token, nil
}

// normalizeExpiry interprets expires_in: values above 10^9 are absolute
// epoch timestamps, smaller ones are seconds from now.
func normalizeExpiry(expiresIn int64, now time.Time) time.Time {
	if expiresIn > 1_000_000_000 {
		return time.Unix(expiresIn, 0)
	}
	return now.Add(time.Duration(expiresIn) * time.Second)
}

// ============================================================
// API calls
// ============================================================

// request performs one authenticated api_call through the proxy and
// unwraps the proxy envelope, returning the downstream payload.
func (c *Client) request(ctx context.Context, endpoint, method string, data interface{}) (json.RawMessage, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.post(ctx, &proxyRequest{
		Action:      actionAPICall,
		Endpoint:    endpoint,
		Method:      method,
		AccessToken: token,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &domain.TransportError{Reason: fmt.Sprintf("réponse proxy invalide: %s", truncate(body, 200))}
	}

	if status < 200 || status >= 300 {
		reason := flattenAPIError(env.Error)
		if reason == "" {
			reason = env.Message
		}
		if reason == "" {
			return nil, &domain.TransportError{Reason: fmt.Sprintf("erreur proxy HTTP %d", status)}
		}
		return nil, &domain.ApplicationError{Message: reason}
	}

	if !env.Success {
		reason := flattenAPIError(env.Error)
		if reason == "" {
			reason = "erreur inconnue du proxy"
		}
		return nil, &domain.ApplicationError{Message: reason}
	}

	return env.Data, nil
}

// call performs an api_call and unwraps the downstream {status,value}
// envelope into out, failing fast on shape mismatch.
func (c *Client) call(ctx context.Context, endpoint, method string, data, out interface{}) error {
	raw, err := c.request(ctx, endpoint, method, data)
	if err != nil {
		return err
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s %s", domain.ErrEmptyEnvelope, method, endpoint)
	}
	if !env.Status || env.Value == nil {
		if env.Error != nil && *env.Error != "" {
			return &domain.ApplicationError{Message: *env.Error}
		}
		return fmt.Errorf("%w: %s %s", domain.ErrEmptyEnvelope, method, endpoint)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Value, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrEmptyEnvelope, method, endpoint, err)
	}
	return nil
}

// ============================================================
// Catalog
// ============================================================

// GetProducts fetches the remote product catalog
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.request(ctx, "/nws/public/v1/api/products", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeCatalog(raw)
}

// decodeCatalog accepts the catalog shapes the API is known to produce, in
// documented priority order: an enveloped array, an enveloped object with a
// list under a known key, or a bare array. Anything else is an error.
func decodeCatalog(raw json.RawMessage) ([]domain.Product, error) {
	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Status && env.Value != nil {
		return decodeProductList(env.Value)
	}

	var direct []domain.Product
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	return nil, domain.ErrCatalogShape
}

func decodeProductList(value json.RawMessage) ([]domain.Product, error) {
	var list []domain.Product
	if err := json.Unmarshal(value, &list); err == nil {
		return list, nil
	}

	var keyed struct {
		Products []domain.Product `json:"products"`
		Data     []domain.Product `json:"data"`
		Items    []domain.Product `json:"items"`
		List     []domain.Product `json:"list"`
		Gammes   []domain.Product `json:"gammes"`
	}
	if err := json.Unmarshal(value, &keyed); err == nil {
		for _, candidate := range [][]domain.Product{keyed.Products, keyed.Data, keyed.Items, keyed.List, keyed.Gammes} {
			if len(candidate) > 0 {
				return candidate, nil
			}
		}
	}

	// Index-keyed object ({"0": {...}, "1": {...}})
	var indexed map[string]domain.Product
	if err := json.Unmarshal(value, &indexed); err == nil && len(indexed) > 0 {
		keys := make([]string, 0, len(indexed))
		for k := range indexed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]domain.Product, 0, len(indexed))
		for _, k := range keys {
			out = append(out, indexed[k])
		}
		return out, nil
	}

	return nil, domain.ErrCatalogShape
}

// GetProductDocuments fetches the sale documents of a product line
func (c *Client) GetProductDocuments(ctx context.Context, gammeID int) ([]domain.ProductDocument, error) {
	var docs []domain.ProductDocument
	endpoint := fmt.Sprintf("/nws/public/v1/api/product/%d/saledocuments", gammeID)
	if err := c.call(ctx, endpoint, http.MethodGet, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocumentContent fetches a sale document as a base64 payload
func (c *Client) GetDocumentContent(ctx context.Context, gammeID, documentID int) (string, error) {
	var content string
	endpoint := fmt.Sprintf("/nws/public/v1/api/product/%d/saledocumentcontent/%d", gammeID, documentID)
	if err := c.call(ctx, endpoint, http.MethodGet, nil, &content); err != nil {
		return "", err
	}
	return content, nil
}

// ============================================================
// Subscription flow
// ============================================================

// CreateCart creates a cart and returns the remote lead correlation ids
func (c *Client) CreateCart(ctx context.Context, cart *CartRequest) (*CartResult, error) {
	var result CartResult
	if err := c.call(ctx, "/nws/public/v1/api/cart", http.MethodPost, cart, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSubscription creates a subscription referencing a cart lead
func (c *Client) CreateSubscription(ctx context.Context, sub *SubscriptionRequest) (*SubscriptionResult, error) {
	var result SubscriptionResult
	if err := c.call(ctx, "/nws/public/v1/api/subscription", http.MethodPost, sub, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitStepConcern submits the insured-details step form
func (c *Client) SubmitStepConcern(ctx context.Context, subID, stepID string, form *StepConcernRequest) (json.RawMessage, error) {
	var value json.RawMessage
	endpoint := fmt.Sprintf("/nws/public/v1/api/subscription/%s/stepconcern/%s", subID, stepID)
	if err := c.call(ctx, endpoint, http.MethodPut, form, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// SubmitStepBank submits the bank-details step form
func (c *Client) SubmitStepBank(ctx context.Context, subID, stepID string, form *StepBankRequest) (json.RawMessage, error) {
	var value json.RawMessage
	endpoint := fmt.Sprintf("/nws/public/v1/api/subscription/%s/stepbank/%s", subID, stepID)
	if err := c.call(ctx, endpoint, http.MethodPut, form, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// GetSubscription fetches the current state of a subscription
func (c *Client) GetSubscription(ctx context.Context, subID string) (json.RawMessage, error) {
	var value json.RawMessage
	endpoint := fmt.Sprintf("/nws/public/v1/api/subscription/%s", subID)
	if err := c.call(ctx, endpoint, http.MethodGet, nil, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// UploadDocument attaches a document to a subscription
func (c *Client) UploadDocument(ctx context.Context, subID string, document interface{}) (json.RawMessage, error) {
	var value json.RawMessage
	endpoint := fmt.Sprintf("/nws/public/v1/api/subscription/%s/document", subID)
	if err := c.call(ctx, endpoint, http.MethodPost, document, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// ValidateContract validates a contract at the end of the flow
func (c *Client) ValidateContract(ctx context.Context, contractID string) (json.RawMessage, error) {
	var value json.RawMessage
	endpoint := fmt.Sprintf("/nws/public/v1/api/contract/%s/validate", contractID)
	if err := c.call(ctx, endpoint, http.MethodPut, []string{}, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// DownloadPrefilledDocuments fetches the pre-filled contract bundle of a
// subscription as a raw binary payload (download_documents action).
func (c *Client) DownloadPrefilledDocuments(ctx context.Context, subID string) ([]byte, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(&proxyRequest{
		Action:         actionDownload,
		SubscriptionID: subID,
		AccessToken:    token,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Reason: fmt.Sprintf("proxy injoignable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{Reason: fmt.Sprintf("téléchargement des documents: HTTP %d", resp.StatusCode)}
	}

	return io.ReadAll(resp.Body)
}

// ============================================================
// Error flattening
// ============================================================

// flattenAPIError turns the remote error payload (plain string, per-field
// validation map, or ad hoc object) into one readable message.
func flattenAPIError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var structured struct {
		Profile map[string]json.RawMessage `json:"profile"`
		Message string                     `json:"message"`
		Detail  string                     `json:"detail"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		if len(structured.Profile) > 0 {
			if msg := flattenFieldErrors(structured.Profile); msg != "" {
				return "Erreurs de validation: " + msg
			}
		}
		if structured.Message != "" {
			return structured.Message
		}
		if structured.Detail != "" {
			return structured.Detail
		}
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err == nil && len(generic) > 0 {
		if msg := flattenFieldErrors(generic); msg != "" {
			return msg
		}
	}

	return string(raw)
}

func flattenFieldErrors(fields map[string]json.RawMessage) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(fields))
	for _, field := range keys {
		raw := fields[field]

		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			parts = append(parts, field+": "+strings.Join(list, ", "))
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, field+": "+s)
			continue
		}
		parts = append(parts, field+": "+string(raw))
	}
	return strings.Join(parts, "; ")
}

func truncate(b []byte, n int) string {
	s := string(b)
	if len(s) > n {
		return s[:n]
	}
	return s
}
