package handlers

import (
	"errors"

	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/middleware"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	applicationService *services.ApplicationService
	log                *zap.Logger
}

func NewApplicationHandler(applicationService *services.ApplicationService, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService, log: log}
}

func (h *ApplicationHandler) ListByCampaign(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	sess := middleware.GetSession(c)
	applications, err := h.applicationService.ListApplications(c.Context(), sess, campaignID)
	if err != nil {
		return respondUpstreamError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: applications})
}

// Decide approves or rejects a pending application. Approval also creates
// the contract; when that second call fails the approval stands and the
// response carries a warning instead of an error.
func (h *ApplicationHandler) Decide(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}
	applicationID, err := uuid.Parse(c.Params("appId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application id"})
	}

	var req dto.DecideApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	sess := middleware.GetSession(c)
	result, err := h.applicationService.UpdateStatus(c.Context(), sess, campaignID, applicationID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrAlreadyProcessing), errors.Is(err, services.ErrNotPending):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondUpstreamError(c, err)
	}

	resp := dto.DecisionResponse{
		OK:          true,
		Application: result.Application,
		Warning:     result.ContractWarning,
	}
	if result.Contract != nil {
		resp.Contract = result.Contract
	}
	return c.JSON(resp)
}
