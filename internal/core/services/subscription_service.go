package services

import (
	"context"
	"log"
	"strconv"

	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/adapters/persistence/repositories"
	"xcr-courtage/internal/core/domain"

	"github.com/goccy/go-json"
)

// Default product/formula pair when an offer carries no reference (matches
// the fallback catalog's entry tier)
const (
	defaultProductID = "538"
	defaultFormulaID = "3847"
)

// regimeAPICodes maps display regimes to the quoting API's numeric codes
var regimeAPICodes = map[string]string{
	"Salarié":             "1",
	"TNS Indépendant":     "2",
	"Exploitant agricole": "3",
	"Retraité salarié":    "4",
	"Retraité TNS":        "5",
	"Etudiant":            "6",
	"Sans emploi":         "7",
	"Alsace-Moselle":      "8",
	"Fonctionnaire":       "9",
	"Enseignant":          "10",
	"Expatrié":            "11",
	"Salarié Agricole":    "12",
}

// cspCodes maps display regimes to CSP codes for the stepconcern form
var cspCodes = map[string]string{
	"Salarié":             "11",
	"TNS Indépendant":     "16",
	"Exploitant agricole": "16",
	"Retraité salarié":    "20",
	"Retraité TNS":        "26",
	"Etudiant":            "23",
	"Sans emploi":         "27",
	"Alsace-Moselle":      "11",
	"Fonctionnaire":       "13",
	"Enseignant":          "13",
	"Expatrié":            "27",
	"Salarié Agricole":    "11",
}

// MapRegime returns the API code of a regime, defaulting to salaried
func MapRegime(regime string) string {
	if code, ok := regimeAPICodes[regime]; ok {
		return code
	}
	log.Printf("⚠️ Régime non reconnu: %q, code par défaut \"1\"", regime)
	return "1"
}

// MapCSP returns the CSP code of a regime, defaulting to salaried
func MapCSP(regime string) string {
	if code, ok := cspCodes[regime]; ok {
		return code
	}
	return "11"
}

// SubscriptionService orchestrates the multi-step subscription flow
type SubscriptionService struct {
	gateway NeolianeGateway
	subRepo repositories.SubscriptionRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(gateway NeolianeGateway, subRepo repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{
		gateway: gateway,
		subRepo: subRepo,
	}
}

// StartFlow runs the two opening steps of the flow, strictly in sequence:
// cart creation (lead id + token), then subscription creation (id + step
// counters). There is no compensation on partial failure: if the
// subscription step fails the cart is abandoned and the caller restarts.
func (s *SubscriptionService) StartFlow(ctx context.Context, offre *domain.Offre, req *domain.TarificationRequest) (*domain.SubscriptionFlowState, error) {
	dateEffect, err := domain.ParseDateEffect(req.DateEffet)
	if err != nil {
		return nil, err
	}

	productID := offre.ProductID
	if productID == "" {
		productID = defaultProductID
	}
	formulaID := offre.FormulaID
	if formulaID == "" {
		formulaID = defaultFormulaID
	}

	cart := &neoliane.CartRequest{
		TotalAmount: strconv.FormatFloat(offre.Prix, 'f', -1, 64),
		Profile: neoliane.CartProfile{
			Zipcode: req.CodePostal,
			Members: []neoliane.CartMember{
				{
					Concern:   "a1",
					BirthYear: strconv.Itoa(req.AnneeNaissance),
					Regime:    MapRegime(req.Regime),
					Products: []neoliane.CartMemberProduct{
						{ProductID: productID, FormulaID: formulaID},
					},
				},
			},
		},
	}
	cart.Profile.DateEffect.Year = dateEffect.Year
	cart.Profile.DateEffect.Month = dateEffect.Month
	cart.Profile.DateEffect.Day = dateEffect.Day

	cartResult, err := s.gateway.CreateCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	log.Printf("🛒 Panier créé, lead_id=%s", cartResult.LeadID)

	subResult, err := s.gateway.CreateSubscription(ctx, &neoliane.SubscriptionRequest{
		LeadID:   cartResult.LeadID,
		SignType: "1",
		Features: []string{"CANCELLATION_LETTER_BETA"},
	})
	if err != nil {
		return nil, err
	}
	log.Printf("📝 Souscription créée, id=%s (étape %d/%d)", subResult.ID, subResult.CurrentStep, subResult.TotalStep)

	state := &domain.SubscriptionFlowState{
		Step:           domain.StepConcern,
		LeadID:         cartResult.LeadID,
		SubscriptionID: subResult.ID,
		Token:          cartResult.Token,
		CurrentStep:    subResult.CurrentStep,
		TotalStep:      subResult.TotalStep,
	}

	s.recordFlow(ctx, state, offre)

	return state, nil
}

// SubmitStepConcern submits the insured-details form for one step
func (s *SubscriptionService) SubmitStepConcern(ctx context.Context, subID, stepID string, form *neoliane.StepConcernRequest) (json.RawMessage, error) {
	value, err := s.gateway.SubmitStepConcern(ctx, subID, stepID, form)
	if err != nil {
		return nil, err
	}
	s.advanceFlow(ctx, subID, models.FlowStatusPending, string(domain.StepBank))
	return value, nil
}

// SubmitStepBank submits the bank-details form for one step
func (s *SubscriptionService) SubmitStepBank(ctx context.Context, subID, stepID string, form *neoliane.StepBankRequest) (json.RawMessage, error) {
	value, err := s.gateway.SubmitStepBank(ctx, subID, stepID, form)
	if err != nil {
		return nil, err
	}
	s.advanceFlow(ctx, subID, models.FlowStatusPending, string(domain.StepDocuments))
	return value, nil
}

// GetSubscription fetches the remote state of a subscription
func (s *SubscriptionService) GetSubscription(ctx context.Context, subID string) (json.RawMessage, error) {
	return s.gateway.GetSubscription(ctx, subID)
}

// UploadDocument attaches a supporting document to a subscription
func (s *SubscriptionService) UploadDocument(ctx context.Context, subID string, document interface{}) (json.RawMessage, error) {
	return s.gateway.UploadDocument(ctx, subID, document)
}

// ValidateContract validates a contract, completing the flow
func (s *SubscriptionService) ValidateContract(ctx context.Context, subID, contractID string) (json.RawMessage, error) {
	value, err := s.gateway.ValidateContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	s.advanceFlow(ctx, subID, models.FlowStatusCompleted, string(domain.StepCompleted))
	log.Printf("✅ Contrat %s validé", contractID)
	return value, nil
}

// PrefilledDocuments fetches the pre-filled contract bundle
func (s *SubscriptionService) PrefilledDocuments(ctx context.Context, subID string) ([]byte, error) {
	return s.gateway.DownloadPrefilledDocuments(ctx, subID)
}

// recordFlow persists the opening snapshot of a flow. Tracking failures are
// logged, never surfaced.
func (s *SubscriptionService) recordFlow(ctx context.Context, state *domain.SubscriptionFlowState, offre *domain.Offre) {
	if s.subRepo == nil {
		return
	}

	record := &models.SubscriptionRecord{
		RemoteLeadID:   state.LeadID,
		SubscriptionID: state.SubscriptionID,
		OffreNom:       offre.Nom,
		OffrePrix:      offre.Prix,
		CurrentStep:    state.CurrentStep,
		TotalStep:      state.TotalStep,
		Step:           string(state.Step),
		Status:         models.FlowStatusPending,
	}
	if err := s.subRepo.Create(ctx, record); err != nil {
		log.Printf("⚠️ Suivi de souscription %s non enregistré: %v", state.SubscriptionID, err)
	}
}

// advanceFlow updates the tracked step of a flow, best effort
func (s *SubscriptionService) advanceFlow(ctx context.Context, subID, status, step string) {
	if s.subRepo == nil {
		return
	}
	if err := s.subRepo.UpdateProgress(ctx, subID, status, step); err != nil {
		log.Printf("⚠️ Mise à jour du suivi %s échouée: %v", subID, err)
	}
}
