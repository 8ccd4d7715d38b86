package handlers

import (
	"net/url"
	"strings"

	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/creatorhub/gateway/internal/linkpreview"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PreviewHandler struct {
	fetcher        *linkpreview.Fetcher
	allowedDomains []string
	log            *zap.Logger
}

func NewPreviewHandler(fetcher *linkpreview.Fetcher, allowedDomains []string, log *zap.Logger) *PreviewHandler {
	return &PreviewHandler{fetcher: fetcher, allowedDomains: allowedDomains, log: log}
}

// Preview resolves Open Graph metadata for a portfolio link so the UI can
// render a card instead of a bare URL.
func (h *PreviewHandler) Preview(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "url is required"})
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid url"})
	}
	if !h.domainAllowed(parsed.Hostname()) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "domain not allowed"})
	}

	preview, err := h.fetcher.Fetch(c.Context(), rawURL)
	if err != nil {
		h.log.Debug("link preview fetch failed", zap.String("url", rawURL), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "could not fetch preview"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: preview})
}

func (h *PreviewHandler) domainAllowed(host string) bool {
	if len(h.allowedDomains) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, d := range h.allowedDomains {
		d = strings.ToLower(d)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
