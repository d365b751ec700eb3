package services

import (
	"context"
	"errors"
	"testing"

	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/core/domain"
)

func TestStartFlow(t *testing.T) {
	gw := &fakeGateway{
		cartResult: &neoliane.CartResult{LeadID: "L1", Token: "T1"},
		subResult:  &neoliane.SubscriptionResult{ID: "S1", CurrentStep: 1, TotalStep: 5},
	}
	svc := NewSubscriptionService(gw, nil)

	offre := &domain.Offre{Nom: "Santé Dynamique", Prix: 36, ProductID: "538", FormulaID: "3847"}
	state, err := svc.StartFlow(context.Background(), offre, quoteRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Step != domain.StepConcern {
		t.Fatalf("expected stepconcern, got %s", state.Step)
	}
	if state.LeadID != "L1" {
		t.Fatalf("expected lead L1, got %s", state.LeadID)
	}
	if state.SubscriptionID != "S1" {
		t.Fatalf("expected subscription S1, got %s", state.SubscriptionID)
	}
	if state.Token != "T1" {
		t.Fatalf("expected token T1, got %s", state.Token)
	}
	if state.CurrentStep != 1 || state.TotalStep != 5 {
		t.Fatalf("expected step 1/5, got %d/%d", state.CurrentStep, state.TotalStep)
	}

	if gw.cartCalls != 1 || gw.subCalls != 1 {
		t.Fatalf("expected one cart and one subscription call, got %d/%d", gw.cartCalls, gw.subCalls)
	}
}

func TestStartFlowCartFailureStopsFlow(t *testing.T) {
	gw := &fakeGateway{cartErr: errors.New("cart rejected")}
	svc := NewSubscriptionService(gw, nil)

	offre := &domain.Offre{Nom: "Santé Dynamique", Prix: 36}
	_, err := svc.StartFlow(context.Background(), offre, quoteRequest())
	if err == nil {
		t.Fatal("expected error from cart failure")
	}
	if gw.subCalls != 0 {
		t.Fatal("subscription must not be attempted after a cart failure")
	}
}

func TestStartFlowSubscriptionFailureSurfaces(t *testing.T) {
	// No compensation on partial failure: the cart is abandoned and the
	// caller restarts
	gw := &fakeGateway{
		cartResult: &neoliane.CartResult{LeadID: "L1", Token: "T1"},
		subErr:     errors.New("subscription rejected"),
	}
	svc := NewSubscriptionService(gw, nil)

	offre := &domain.Offre{Nom: "Santé Dynamique", Prix: 36}
	_, err := svc.StartFlow(context.Background(), offre, quoteRequest())
	if err == nil {
		t.Fatal("expected error from subscription failure")
	}
	if gw.cartCalls != 1 {
		t.Fatalf("expected one cart call, got %d", gw.cartCalls)
	}
}

func TestStartFlowRejectsInvalidDate(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewSubscriptionService(gw, nil)

	req := quoteRequest()
	req.DateEffet = "pas-une-date"

	offre := &domain.Offre{Nom: "Santé Dynamique", Prix: 36}
	_, err := svc.StartFlow(context.Background(), offre, req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if gw.cartCalls != 0 {
		t.Fatal("no network call expected on invalid date")
	}
}

func TestStartFlowDefaultsProductReferences(t *testing.T) {
	gw := &fakeGateway{
		cartResult: &neoliane.CartResult{LeadID: "L1", Token: "T1"},
		subResult:  &neoliane.SubscriptionResult{ID: "S1", CurrentStep: 1, TotalStep: 5},
	}
	svc := NewSubscriptionService(gw, nil)

	// Fallback offers may carry no references; the flow uses the default pair
	offre := &domain.Offre{Nom: "Formule Essentielle", Prix: 25.2}
	if _, err := svc.StartFlow(context.Background(), offre, quoteRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMapRegime(t *testing.T) {
	cases := map[string]string{
		"Salarié":          "1",
		"TNS Indépendant":  "2",
		"Retraité salarié": "4",
		"Etudiant":         "6",
		"Salarié Agricole": "12",
		"Inconnu":          "1",
		"":                 "1",
	}
	for regime, want := range cases {
		if got := MapRegime(regime); got != want {
			t.Fatalf("MapRegime(%q): expected %s, got %s", regime, want, got)
		}
	}
}

func TestMapCSP(t *testing.T) {
	cases := map[string]string{
		"Salarié":          "11",
		"TNS Indépendant":  "16",
		"Retraité salarié": "20",
		"Retraité TNS":     "26",
		"Etudiant":         "23",
		"Sans emploi":      "27",
		"Fonctionnaire":    "13",
		"Inconnu":          "11",
	}
	for regime, want := range cases {
		if got := MapCSP(regime); got != want {
			t.Fatalf("MapCSP(%q): expected %s, got %s", regime, want, got)
		}
	}
}
