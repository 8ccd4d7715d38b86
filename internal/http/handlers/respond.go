package handlers

import (
	"errors"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/http/dto"
	"github.com/gofiber/fiber/v2"
)

// respondUpstreamError translates a failure from the platform API into a
// response for the browser. Normalized upstream errors keep their status and
// user-facing message; transport failures surface as 502 with the
// connectivity message.
func respondUpstreamError(c *fiber.Ctx, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(dto.ErrorResponse{Error: apiErr.Message})
	}
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: backend.UserMessage(err)})
}
