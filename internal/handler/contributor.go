package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
)

type ContributorHandler struct {
	svc *service.ContributorService
}

func NewContributorHandler(svc *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{svc: svc}
}

// GetByID handles GET /api/contributors/:contributorId
func (h *ContributorHandler) GetByID(c fiber.Ctx) error {
	contributorID, errMsg := middleware.ValidateContributorID(c.Params("contributorId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Lookup(c.Context(), contributorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Contributor not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup contributor")
	}

	return c.JSON(resp)
}
