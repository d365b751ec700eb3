package handlers

import (
	"xcr-courtage/internal/adapters/neoliane"
	"xcr-courtage/internal/core/domain"
	"xcr-courtage/internal/core/services"
	"xcr-courtage/internal/pkg/response"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler handles subscription flow endpoints
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// StartFlowRequest represents the body of a flow opening request
type StartFlowRequest struct {
	Offre        domain.Offre               `json:"offre"`
	Tarification domain.TarificationRequest `json:"tarification"`
}

// StartFlow opens a subscription flow for a chosen offer
// @Summary Start a subscription flow
// @Description Create the cart then the subscription for a chosen offer, returning the flow state
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param body body StartFlowRequest true "Chosen offer and insured profile"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /subscriptions [post]
func (h *SubscriptionHandler) StartFlow(c *fiber.Ctx) error {
	var req StartFlowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Offre.Nom == "" {
		return response.BadRequest(c, "offre.nom is required")
	}
	if req.Offre.Prix <= 0 {
		return response.BadRequest(c, "offre.prix must be positive")
	}

	state, err := h.subscriptionService.StartFlow(c.Context(), &req.Offre, &req.Tarification)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Created(c, "Souscription initialisée", state)
}

// SubmitConcern submits the insured-details form
// @Summary Submit insured details
// @Description Submit the stepconcern form for a subscription step
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param step_id path string true "Step ID"
// @Param body body neoliane.StepConcernRequest true "Insured details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /subscriptions/{id}/concern/{step_id} [put]
func (h *SubscriptionHandler) SubmitConcern(c *fiber.Ctx) error {
	subID := c.Params("id")
	stepID := c.Params("step_id")

	var form neoliane.StepConcernRequest
	if err := c.BodyParser(&form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	value, err := h.subscriptionService.SubmitStepConcern(c.Context(), subID, stepID, &form)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Informations assuré enregistrées", rawJSON(value))
}

// SubmitBank submits the bank-details form
// @Summary Submit bank details
// @Description Submit the stepbank form for a subscription step
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param step_id path string true "Step ID"
// @Param body body neoliane.StepBankRequest true "Bank details"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /subscriptions/{id}/bank/{step_id} [put]
func (h *SubscriptionHandler) SubmitBank(c *fiber.Ctx) error {
	subID := c.Params("id")
	stepID := c.Params("step_id")

	var form neoliane.StepBankRequest
	if err := c.BodyParser(&form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	value, err := h.subscriptionService.SubmitStepBank(c.Context(), subID, stepID, &form)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Coordonnées bancaires enregistrées", rawJSON(value))
}

// GetSubscription fetches the remote state of a subscription
// @Summary Get subscription state
// @Description Fetch the remote state of a subscription
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *fiber.Ctx) error {
	value, err := h.subscriptionService.GetSubscription(c.Context(), c.Params("id"))
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Souscription récupérée", rawJSON(value))
}

// UploadDocument attaches a supporting document
// @Summary Upload a supporting document
// @Description Attach a supporting document to a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /subscriptions/{id}/documents [post]
func (h *SubscriptionHandler) UploadDocument(c *fiber.Ctx) error {
	var document map[string]interface{}
	if err := c.BodyParser(&document); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	value, err := h.subscriptionService.UploadDocument(c.Context(), c.Params("id"), document)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Document téléversé", rawJSON(value))
}

// PrefilledDocuments streams the pre-filled contract bundle
// @Summary Download pre-filled documents
// @Description Download the pre-filled contract bundle for a subscription
// @Tags Subscriptions
// @Produce application/pdf
// @Param id path string true "Subscription ID"
// @Success 200 {file} binary
// @Failure 502 {object} response.Response
// @Router /subscriptions/{id}/prefilled [get]
func (h *SubscriptionHandler) PrefilledDocuments(c *fiber.Ctx) error {
	subID := c.Params("id")

	data, err := h.subscriptionService.PrefilledDocuments(c.Context(), subID)
	if err != nil {
		return upstreamError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="contrat_`+subID+`.pdf"`)
	return c.Send(data)
}

// ValidateContract validates a contract and completes the flow
// @Summary Validate a contract
// @Description Validate a contract, completing the subscription flow
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Contract ID"
// @Param subscription_id query string false "Subscription ID for flow tracking"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /contracts/{id}/validate [put]
func (h *SubscriptionHandler) ValidateContract(c *fiber.Ctx) error {
	contractID := c.Params("id")
	subID := c.Query("subscription_id")

	value, err := h.subscriptionService.ValidateContract(c.Context(), subID, contractID)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Contrat validé", rawJSON(value))
}

// rawJSON wraps an already-encoded payload so the response envelope embeds
// it as-is instead of re-encoding it as a string
func rawJSON(value json.RawMessage) interface{} {
	if len(value) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(value, &out); err != nil {
		return string(value)
	}
	return out
}
