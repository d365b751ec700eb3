package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"xcr-courtage/internal/core/domain"
)

func TestProductDocumentsRejectsBadGammeID(t *testing.T) {
	svc := NewDocumentService(&fakeGateway{})

	for _, id := range []int{0, -3} {
		_, err := svc.ProductDocuments(context.Background(), id)
		if err == nil {
			t.Fatalf("expected error for gammeId %d", id)
		}
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}
}

func TestFetchDocumentDecodesBase64(t *testing.T) {
	payload := []byte("%PDF-1.4 fake content")
	gw := &fakeGateway{docContent: base64.StdEncoding.EncodeToString(payload)}
	svc := NewDocumentService(gw)

	file, err := svc.FetchDocument(context.Background(), 538, 42, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(file.Data) != string(payload) {
		t.Fatal("decoded payload mismatch")
	}
	if file.ContentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", file.ContentType)
	}
	if file.Filename != "document_42.pdf" {
		t.Fatalf("expected default filename, got %s", file.Filename)
	}
}

func TestFetchDocumentAcceptsRawEncoding(t *testing.T) {
	payload := []byte("contenu")
	gw := &fakeGateway{docContent: base64.RawStdEncoding.EncodeToString(payload)}
	svc := NewDocumentService(gw)

	file, err := svc.FetchDocument(context.Background(), 538, 7, "notice.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(file.Data) != string(payload) {
		t.Fatal("decoded payload mismatch")
	}
	if file.Filename != "notice.pdf" {
		t.Fatalf("expected caller filename, got %s", file.Filename)
	}
}

func TestFetchDocumentRejectsGarbage(t *testing.T) {
	gw := &fakeGateway{docContent: "pas du base64 !!!"}
	svc := NewDocumentService(gw)

	_, err := svc.FetchDocument(context.Background(), 538, 42, "")
	if err == nil {
		t.Fatal("expected error for unreadable content")
	}
	var appErr *domain.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected ApplicationError, got %T", err)
	}
}
