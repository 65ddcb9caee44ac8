package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
)

type StatsHandler struct {
	svc *service.ReportService
}

func NewStatsHandler(svc *service.ReportService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetProductStats handles GET /api/products/:productId/stats?areaId=Y
func (h *StatsHandler) GetProductStats(c fiber.Ctx) error {
	productID, errMsg := middleware.ValidateRef(c.Params("productId"), "productId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	areaID, errMsg := middleware.ValidateOptionalRef(fiber.Query[string](c, "areaId"), "areaId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	stats, err := h.svc.ProductStats(c.Context(), productID, areaID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute statistics")
	}

	return c.JSON(stats)
}
