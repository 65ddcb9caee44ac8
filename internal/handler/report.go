package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
	"github.com/mayar-kabaja/gaza-price-sub000/pkg/hash"
)

type ReportHandler struct {
	svc    *service.ReportService
	ipSalt string
}

func NewReportHandler(svc *service.ReportService, ipSalt string) *ReportHandler {
	return &ReportHandler{svc: svc, ipSalt: ipSalt}
}

// Submit handles POST /api/reports
func (h *ReportHandler) Submit(c fiber.Ctx) error {
	var req model.ReportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	contributorID, errMsg := middleware.ValidateContributorID(req.ContributorID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.ContributorID = contributorID

	productID, errMsg := middleware.ValidateRef(req.ProductID, "productId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.ProductID = productID

	areaID, errMsg := middleware.ValidateRef(req.AreaID, "areaId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.AreaID = areaID

	storeID, errMsg := middleware.ValidateOptionalRef(req.StoreID, "storeId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.StoreID = storeID

	storeName, errMsg := middleware.ValidateStoreName(req.StoreName)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.StoreName = storeName

	price, errMsg := middleware.ValidatePrice(req.Price)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	currency, errMsg := middleware.ValidateCurrency(req.Currency)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CURRENCY", errMsg)
	}
	req.Currency = currency

	ipHash := hash.HashIP(c.IP(), h.ipSalt)

	rep, decision, err := h.svc.Submit(c.Context(), req, price, ipHash)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit report")
	}
	if !decision.Allowed {
		Metrics.RateLimitDenials.WithLabelValues("submit_report").Inc()
		return middleware.RateLimitedResponse(c, decision.RetryAfterSeconds())
	}

	Metrics.ReportsTotal.WithLabelValues(rep.Currency).Inc()
	return c.Status(fiber.StatusCreated).JSON(model.ReportResponse{Success: true, Report: rep})
}

// List handles GET /api/reports?productId=X&areaId=Y
func (h *ReportHandler) List(c fiber.Ctx) error {
	productID, errMsg := middleware.ValidateRef(fiber.Query[string](c, "productId"), "productId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_PARAM", errMsg)
	}

	areaID, errMsg := middleware.ValidateOptionalRef(fiber.Query[string](c, "areaId"), "areaId")
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	reports, err := h.svc.ListActive(c.Context(), productID, areaID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reports")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

// GetByID handles GET /api/reports/:reportId
func (h *ReportHandler) GetByID(c fiber.Ctx) error {
	reportID, errMsg := middleware.ValidateReportID(c.Params("reportId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	rep, err := h.svc.Get(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Report not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch report")
	}

	return c.JSON(rep)
}
