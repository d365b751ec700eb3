package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"xcr-courtage/internal/core/domain"
)

// DocumentService retrieves product sale documents. No caching: each call
// re-fetches from the quoting API.
type DocumentService struct {
	gateway NeolianeGateway
}

// NewDocumentService creates a new document service
func NewDocumentService(gateway NeolianeGateway) *DocumentService {
	return &DocumentService{gateway: gateway}
}

// ProductDocuments lists the sale documents of a product line
func (s *DocumentService) ProductDocuments(ctx context.Context, gammeID int) ([]domain.ProductDocument, error) {
	if gammeID <= 0 {
		return nil, &domain.ValidationError{Field: "gammeId", Reason: fmt.Sprintf("identifiant de gamme invalide: %d", gammeID)}
	}
	return s.gateway.GetProductDocuments(ctx, gammeID)
}

// DocumentContent fetches a sale document as its base64 payload
func (s *DocumentService) DocumentContent(ctx context.Context, gammeID, documentID int) (string, error) {
	if gammeID <= 0 {
		return "", &domain.ValidationError{Field: "gammeId", Reason: fmt.Sprintf("identifiant de gamme invalide: %d", gammeID)}
	}
	return s.gateway.GetDocumentContent(ctx, gammeID, documentID)
}

// FetchDocument fetches and decodes a sale document into a streamable file
func (s *DocumentService) FetchDocument(ctx context.Context, gammeID, documentID int, filename string) (*domain.DocumentFile, error) {
	content, err := s.DocumentContent(ctx, gammeID, documentID)
	if err != nil {
		return nil, err
	}

	data, err := decodeBase64(content)
	if err != nil {
		return nil, &domain.ApplicationError{Message: fmt.Sprintf("contenu du document %d illisible: %v", documentID, err)}
	}

	if filename == "" {
		filename = fmt.Sprintf("document_%d.pdf", documentID)
	}

	return &domain.DocumentFile{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// decodeBase64 accepts both padded and raw encodings
func decodeBase64(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if data, err := base64.StdEncoding.DecodeString(content); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(content)
}
