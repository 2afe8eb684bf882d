package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/response"
)

// StatsHandler handles dashboard statistics endpoints
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Dashboard returns aggregated library statistics
// @Summary Dashboard statistics
// @Description Catalog, borrower and loan counts bucketed by derived status
// @Tags Stats
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.statsService.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}
