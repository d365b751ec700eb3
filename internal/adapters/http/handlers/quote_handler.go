package handlers

import (
	"xcr-courtage/internal/core/domain"
	"xcr-courtage/internal/core/services"
	"xcr-courtage/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// QuoteHandler handles health-insurance quoting endpoints
type QuoteHandler struct {
	tarificationService *services.TarificationService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(tarificationService *services.TarificationService) *QuoteHandler {
	return &QuoteHandler{tarificationService: tarificationService}
}

// Tarify computes priced offers for an insured profile
// @Summary Compute health insurance offers
// @Description Price the product catalog against an insured profile. Falls back to a static catalog when the upstream API is unavailable.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param body body domain.TarificationRequest true "Insured profile"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /quotes/tarification [post]
func (h *QuoteHandler) Tarify(c *fiber.Ctx) error {
	var req domain.TarificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.DateEffet == "" {
		return response.BadRequest(c, "dateEffet is required")
	}
	if req.AnneeNaissance == 0 {
		return response.BadRequest(c, "anneeNaissance is required")
	}
	if req.Regime == "" {
		return response.BadRequest(c, "regime is required")
	}

	result, err := h.tarificationService.Tarify(c.Context(), &req)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Tarification calculée", result)
}
