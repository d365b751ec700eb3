package services

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/core/domain"

	"github.com/google/uuid"
)

// tierRule prices a product family: the first rule whose keyword appears in
// the product label wins. Evaluation order is the declared order; overlaps
// (a label containing both "performance" and "pulse") resolve to the
// earlier rule.
type tierRule struct {
	keywords   []string
	multiplier float64
	garanties  []domain.Garantie
}

var tierRules = []tierRule{
	{
		keywords:   []string{"dynamique"},
		multiplier: 0.8,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "80%"},
			{Nom: "Pharmacie", Niveau: "70%"},
			{Nom: "Analyses", Niveau: "80%"},
		},
	},
	{
		keywords:   []string{"hospisanté"},
		multiplier: 0.9,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "85%"},
			{Nom: "Pharmacie", Niveau: "75%"},
			{Nom: "Analyses", Niveau: "85%"},
		},
	},
	{
		keywords:   []string{"innov"},
		multiplier: 1.1,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "85%"},
			{Nom: "Optique", Niveau: "200€/an"},
			{Nom: "Analyses", Niveau: "100%"},
		},
	},
	{
		keywords:   []string{"performance"},
		multiplier: 1.3,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "300€/an"},
			{Nom: "Dentaire", Niveau: "150%"},
			{Nom: "Analyses", Niveau: "100%"},
		},
	},
	{
		keywords:   []string{"plénitude"},
		multiplier: 1.5,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "400€/an"},
			{Nom: "Dentaire", Niveau: "200%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "200€/an"},
		},
	},
	{
		keywords:   []string{"quiétude"},
		multiplier: 1.7,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "500€/an"},
			{Nom: "Dentaire", Niveau: "250%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "300€/an"},
			{Nom: "Cure thermale", Niveau: "200€/an"},
		},
	},
	{
		keywords:   []string{"optima"},
		multiplier: 2.0,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "700€/an"},
			{Nom: "Dentaire", Niveau: "300%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "400€/an"},
			{Nom: "Cure thermale", Niveau: "300€/an"},
			{Nom: "Chambre particulière", Niveau: "Illimitée"},
		},
	},
	{
		keywords:   []string{"altosanté"},
		multiplier: 2.3,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "900€/an"},
			{Nom: "Dentaire", Niveau: "400%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "500€/an"},
			{Nom: "Cure thermale", Niveau: "400€/an"},
			{Nom: "Chambre particulière", Niveau: "Illimitée"},
			{Nom: "Assistance internationale", Niveau: "Incluse"},
		},
	},
	{
		keywords:   []string{"pulse"},
		multiplier: 1.2,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "90%"},
			{Nom: "Optique", Niveau: "250€/an"},
			{Nom: "Dentaire", Niveau: "120%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Sport santé", Niveau: "100€/an"},
		},
	},
	{
		keywords:   []string{"énergik", "energik"},
		multiplier: 1.4,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "350€/an"},
			{Nom: "Dentaire", Niveau: "180%"},
			{Nom: "Analyses", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "250€/an"},
			{Nom: "Sport santé", Niveau: "200€/an"},
		},
	},
}

// defaultTier prices products no rule matches
var defaultTier = tierRule{
	multiplier: 1.0,
	garanties: []domain.Garantie{
		{Nom: "Hospitalisation", Niveau: "100%"},
		{Nom: "Médecine courante", Niveau: "100%"},
		{Nom: "Pharmacie", Niveau: "80%"},
		{Nom: "Analyses", Niveau: "100%"},
	},
}

// matchTier returns the first rule whose keyword appears in the label
func matchTier(label string) tierRule {
	lower := strings.ToLower(label)
	for _, rule := range tierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule
			}
		}
	}
	return defaultTier
}

// fallbackFormule is one entry of the static catalog used when the remote
// catalog cannot be fetched
type fallbackFormule struct {
	nom        string
	multiplier float64
	productID  string
	formulaID  string
	gammeID    int
	garanties  []domain.Garantie
}

var fallbackFormules = []fallbackFormule{
	{
		nom: "Formule Essentielle", multiplier: 0.7, productID: "538", formulaID: "3847", gammeID: 538,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "70%"},
			{Nom: "Pharmacie", Niveau: "65%"},
			{Nom: "Analyses et examens", Niveau: "70%"},
		},
	},
	{
		nom: "Formule Confort", multiplier: 1.0, productID: "539", formulaID: "3848", gammeID: 539,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "80%"},
			{Nom: "Optique", Niveau: "150€/an"},
			{Nom: "Analyses et examens", Niveau: "100%"},
		},
	},
	{
		nom: "Formule Premium", multiplier: 1.4, productID: "540", formulaID: "3849", gammeID: 540,
		garanties: []domain.Garantie{
			{Nom: "Hospitalisation", Niveau: "100%"},
			{Nom: "Médecine courante", Niveau: "100%"},
			{Nom: "Pharmacie", Niveau: "100%"},
			{Nom: "Optique", Niveau: "300€/an"},
			{Nom: "Dentaire", Niveau: "200%"},
			{Nom: "Analyses et examens", Niveau: "100%"},
			{Nom: "Médecines douces", Niveau: "150€/an"},
		},
	},
}

// TarificationService maps the remote catalog into priced offers
type TarificationService struct {
	gateway  NeolianeGateway
	leadRepo repositories.LeadRepository
}

// NewTarificationService creates a new tarification service
func NewTarificationService(gateway NeolianeGateway, leadRepo repositories.LeadRepository) *TarificationService {
	return &TarificationService{
		gateway:  gateway,
		leadRepo: leadRepo,
	}
}

// Tarify computes the offer list for a quote request. The effective date is
// validated before any network call. A catalog failure is the one error
// converted into recovery: the static fallback catalog, flagged Degraded.
func (s *TarificationService) Tarify(ctx context.Context, req *domain.TarificationRequest) (*domain.TarificationResponse, error) {
	if _, err := domain.ParseDateEffect(req.DateEffet); err != nil {
		return nil, err
	}

	products, err := s.gateway.GetProducts(ctx)
	if err != nil || len(products) == 0 {
		if err != nil {
			log.Printf("⚠️ Catalogue Neoliane indisponible, bascule sur les offres de repli: %v", err)
		}
		return s.fallback(ctx, req), nil
	}

	candidates := filterHealth(products)

	basePrice := BasePrice(req.Age(), req.Regime)

	offres := make([]domain.Offre, 0, len(candidates))
	for _, product := range candidates {
		if product.GammeLabel == nil {
			continue
		}

		tier := matchTier(*product.GammeLabel)
		prix := RoundCents(WithBeneficiaries(basePrice*tier.multiplier, req.Conjoint, req.Enfants))

		offres = append(offres, domain.Offre{
			Nom:       *product.GammeLabel,
			Prix:      prix,
			Garanties: tier.garanties,
			ProductID: strconv.Itoa(product.GammeID),
			FormulaID: "formula_" + strconv.Itoa(product.GammeID),
			GammeID:   product.GammeID,
		})
	}

	sort.Slice(offres, func(i, j int) bool { return offres[i].Prix < offres[j].Prix })

	resp := &domain.TarificationResponse{
		QuoteRef: uuid.New().String(),
		Offres:   offres,
	}
	s.recordLead(ctx, resp, req)

	log.Printf("💰 Tarification %s: %d offres", resp.QuoteRef, len(offres))
	return resp, nil
}

// fallback builds the static three-tier catalog. It has no network
// dependency and always succeeds.
func (s *TarificationService) fallback(ctx context.Context, req *domain.TarificationRequest) *domain.TarificationResponse {
	basePrice := BasePrice(req.Age(), req.Regime)

	offres := make([]domain.Offre, 0, len(fallbackFormules))
	for _, f := range fallbackFormules {
		prix := RoundCents(WithBeneficiaries(basePrice*f.multiplier, req.Conjoint, req.Enfants))
		offres = append(offres, domain.Offre{
			Nom:       f.nom,
			Prix:      prix,
			Garanties: f.garanties,
			ProductID: f.productID,
			FormulaID: f.formulaID,
			GammeID:   f.gammeID,
		})
	}

	resp := &domain.TarificationResponse{
		QuoteRef: uuid.New().String(),
		Offres:   offres,
		Degraded: true,
		Message:  "Offres de repli (API Neoliane temporairement indisponible)",
	}
	s.recordLead(ctx, resp, req)

	return resp
}

// recordLead persists the quote as a lead for advisor follow-up. Failures
// are logged, never surfaced: lead capture must not break quoting.
func (s *TarificationService) recordLead(ctx context.Context, resp *domain.TarificationResponse, req *domain.TarificationRequest) {
	if s.leadRepo == nil {
		return
	}

	lead := &models.Lead{
		QuoteRef:       resp.QuoteRef,
		DateEffet:      req.DateEffet,
		CodePostal:     req.CodePostal,
		AnneeNaissance: req.AnneeNaissance,
		Regime:         req.Regime,
		AvecConjoint:   req.Conjoint != nil,
		NbEnfants:      len(req.Enfants),
		NbOffres:       len(resp.Offres),
		Degraded:       resp.Degraded,
	}
	if len(resp.Offres) > 0 {
		lead.PrixMin = resp.Offres[0].Prix
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		log.Printf("⚠️ Enregistrement du lead %s échoué: %v", resp.QuoteRef, err)
	}
}

// filterHealth keeps products of the health line; when none match, the full
// catalog is used rather than returning nothing.
func filterHealth(products []domain.Product) []domain.Product {
	health := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Type == "sante" {
			health = append(health, p)
			continue
		}
		if p.GammeLabel != nil {
			label := strings.ToLower(*p.GammeLabel)
			if strings.Contains(label, "santé") || strings.Contains(label, "sante") {
				health = append(health, p)
			}
		}
	}
	if len(health) == 0 {
		return products
	}
	return health
}
