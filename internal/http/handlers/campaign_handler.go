package handlers

import (
	"errors"
	"strconv"

	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/middleware"
	"github.com/creatorhub/gateway/internal/repositories"
	"github.com/creatorhub/gateway/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, log: log}
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	filter := repositories.CampaignFilter{
		Status:  c.Query("status"),
		Page:    1,
		PerPage: 20,
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.PerPage = n
		}
	}

	sess := middleware.GetSession(c)
	campaigns, pagination, err := h.campaignService.ListCampaigns(c.Context(), sess, filter)
	if err != nil {
		return respondUpstreamError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns, Meta: pagination})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	sess := middleware.GetSession(c)
	campaign, err := h.campaignService.GetCampaign(c.Context(), sess, id)
	if err != nil {
		return respondUpstreamError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: campaign})
}

func (h *CampaignHandler) Apply(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid campaign id"})
	}

	var req dto.ApplyCampaignRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	sess := middleware.GetSession(c)
	application, err := h.campaignService.ApplyToCampaign(c.Context(), sess, id, repositories.ApplyInput{
		Proposal:             req.Proposal,
		ProposedBudget:       req.ProposedBudget,
		ProposedDeliveryDays: req.ProposedDeliveryDays,
		PortfolioLinks:       req.PortfolioLinks,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyProposal),
			errors.Is(err, services.ErrInvalidBudget),
			errors.Is(err, services.ErrInvalidDays):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrCampaignClosed):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondUpstreamError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: application})
}
