package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
)

type SuggestionHandler struct {
	svc *service.SuggestionService
}

func NewSuggestionHandler(svc *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{svc: svc}
}

// Create handles POST /api/suggestions
func (h *SuggestionHandler) Create(c fiber.Ctx) error {
	var req model.SuggestionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	contributorID, errMsg := middleware.ValidateContributorID(req.ContributorID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.ContributorID = contributorID

	productName, errMsg := middleware.ValidateProductName(req.ProductName)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.ProductName = productName

	sug, decision, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save suggestion")
	}
	if !decision.Allowed {
		Metrics.RateLimitDenials.WithLabelValues("suggest_product").Inc()
		return middleware.RateLimitedResponse(c, decision.RetryAfterSeconds())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"suggestion": sug,
	})
}
