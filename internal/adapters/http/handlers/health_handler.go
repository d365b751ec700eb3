package handlers

import (
	"time"

	"xcr-courtage/internal/core/services"
	"xcr-courtage/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db      *gorm.DB
	gateway services.NeolianeGateway
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, gateway services.NeolianeGateway) *HealthHandler {
	return &HealthHandler{
		db:      db,
		gateway: gateway,
		started: time.Now(),
	}
}

// Health returns service health
// @Summary Health check
// @Description Check API, database and upstream proxy health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	dbStatus := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	proxyStatus := "up"
	if err := h.gateway.Ping(c.Context()); err != nil {
		proxyStatus = "down"
	}

	return response.Success(c, "Service is healthy", fiber.Map{
		"status":   "ok",
		"database": dbStatus,
		"proxy":    proxyStatus,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}

// Root returns basic service info
// @Summary Service info
// @Description Basic service identification
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "XCR Courtage API", fiber.Map{
		"service": "xcr-courtage",
		"version": "1.0.0",
	})
}
