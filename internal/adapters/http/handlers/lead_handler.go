package handlers

import (
	"errors"

	"xcr-courtage/internal/core/domain"
	"xcr-courtage/internal/core/services"
	"xcr-courtage/internal/pkg/pagination"
	"xcr-courtage/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LeadHandler handles advisor-facing lead endpoints
type LeadHandler struct {
	leadService *services.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// ListLeads lists quote leads
// @Summary List leads
// @Description List saved quote leads, newest first
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param degraded query bool false "Only leads quoted in degraded mode"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /leads [get]
func (h *LeadHandler) ListLeads(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	degradedOnly := c.QueryBool("degraded")

	leads, total, err := h.leadService.ListLeads(c.Context(), params.Offset, params.Limit, degradedOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list leads")
	}

	return response.Success(c, "Leads retrieved successfully", pagination.NewResponse(leads, params, total))
}

// GetLead gets a lead by quote reference
// @Summary Get a lead
// @Description Get a saved quote lead by its quote reference
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param quote_ref path string true "Quote reference"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{quote_ref} [get]
func (h *LeadHandler) GetLead(c *fiber.Ctx) error {
	lead, err := h.leadService.GetLead(c.Context(), c.Params("quote_ref"))
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return response.NotFound(c, "Lead not found")
		}
		return response.InternalServerError(c, "Failed to get lead")
	}

	return response.Success(c, "Lead retrieved successfully", lead)
}

// ListFlows lists tracked subscription flows
// @Summary List subscription flows
// @Description List tracked subscription flows, newest first
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /flows [get]
func (h *LeadHandler) ListFlows(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	flows, total, err := h.leadService.ListFlows(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list flows")
	}

	return response.Success(c, "Flows retrieved successfully", pagination.NewResponse(flows, params, total))
}

// GetFlow gets a tracked flow by subscription id
// @Summary Get a subscription flow
// @Description Get a tracked subscription flow by its remote id
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /flows/{id} [get]
func (h *LeadHandler) GetFlow(c *fiber.Ctx) error {
	flow, err := h.leadService.GetFlow(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			return response.NotFound(c, "Flow not found")
		}
		return response.InternalServerError(c, "Failed to get flow")
	}

	return response.Success(c, "Flow retrieved successfully", flow)
}
