package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/middleware"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/service"
)

type DispositionHandler struct {
	svc *service.DispositionService
}

func NewDispositionHandler(svc *service.DispositionService) *DispositionHandler {
	return &DispositionHandler{svc: svc}
}

// Confirm handles POST /api/reports/:reportId/confirm
func (h *DispositionHandler) Confirm(c fiber.Ctx) error {
	reportID, contributorID, _, errResp := h.parseAction(c)
	if errResp != nil {
		return errResp(c)
	}

	resp, decision, err := h.svc.SetConfirmed(c.Context(), reportID, contributorID)
	return h.respond(c, "confirm", resp, decision, err)
}

// Flag handles POST /api/reports/:reportId/flag
func (h *DispositionHandler) Flag(c fiber.Ctx) error {
	reportID, contributorID, reason, errResp := h.parseAction(c)
	if errResp != nil {
		return errResp(c)
	}

	resp, decision, err := h.svc.SetFlagged(c.Context(), reportID, contributorID, reason)
	return h.respond(c, "flag", resp, decision, err)
}

// Clear handles DELETE /api/reports/:reportId/disposition
func (h *DispositionHandler) Clear(c fiber.Ctx) error {
	reportID, errMsg := middleware.ValidateReportID(c.Params("reportId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	contributorID, errMsg := middleware.ValidateContributorID(c.Get("X-Contributor-ID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Clear(c.Context(), reportID, contributorID)
	if err != nil {
		return h.mapError(c, err)
	}
	Metrics.DispositionsTotal.WithLabelValues("clear").Inc()
	return c.JSON(resp)
}

// Get handles GET /api/reports/:reportId/disposition
func (h *DispositionHandler) Get(c fiber.Ctx) error {
	reportID, errMsg := middleware.ValidateReportID(c.Params("reportId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	contributorID, errMsg := middleware.ValidateContributorID(c.Get("X-Contributor-ID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	d, err := h.svc.Get(c.Context(), reportID, contributorID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch disposition")
	}
	return c.JSON(d)
}

// parseAction validates the shared confirm/flag request shape. The
// contributor id comes from the body, falling back to the header.
func (h *DispositionHandler) parseAction(c fiber.Ctx) (reportID, contributorID, reason string, errResp func(fiber.Ctx) error) {
	reportID, errMsg := middleware.ValidateReportID(c.Params("reportId"))
	if errMsg != "" {
		msg := errMsg
		return "", "", "", func(c fiber.Ctx) error {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
		}
	}

	var req model.DispositionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return "", "", "", func(c fiber.Ctx) error {
				return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
			}
		}
	}
	if req.ContributorID == "" {
		req.ContributorID = c.Get("X-Contributor-ID")
	}

	contributorID, errMsg = middleware.ValidateContributorID(req.ContributorID)
	if errMsg != "" {
		msg := errMsg
		return "", "", "", func(c fiber.Ctx) error {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
		}
	}

	return reportID, contributorID, middleware.ValidateReason(req.Reason), nil
}

func (h *DispositionHandler) respond(c fiber.Ctx, kind string, resp *model.DispositionResponse, decision model.RateDecision, err error) error {
	if err != nil {
		return h.mapError(c, err)
	}
	if !decision.Allowed {
		Metrics.RateLimitDenials.WithLabelValues(kind).Inc()
		return middleware.RateLimitedResponse(c, decision.RetryAfterSeconds())
	}
	Metrics.DispositionsTotal.WithLabelValues(kind).Inc()
	return c.JSON(resp)
}

func (h *DispositionHandler) mapError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Report not found")
	case errors.Is(err, service.ErrReportClosed):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "REPORT_CLOSED", "Report is expired or rejected")
	case errors.Is(err, service.ErrOwnReport):
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "OWN_REPORT", "Cannot confirm or flag your own report")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update disposition")
	}
}
