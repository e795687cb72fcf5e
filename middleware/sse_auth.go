// middleware/sse_auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StreamAuthMiddleware authenticates event-stream requests from the `token` and
// `member_id` query parameters, since EventSource clients cannot set headers.
//
// Usage:
//
//	app.Get("/stream/quests/:id/activity", middleware.StreamAuthMiddleware(token, logger), h.StreamActivity)
func StreamAuthMiddleware(expectedToken string, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		memberID := strings.TrimSpace(c.Query("member_id"))

		if token == "" || memberID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing token or member_id in query",
			})
		}
		if expectedToken == "" || !tokensEqual(token, expectedToken) {
			logger.Warn("[SSEAuth] ❌ invalid stream token", zap.String("path", c.Path()), zap.String("member", memberID))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		c.Locals(LocalMemberID, memberID)
		c.Locals(LocalMemberName, memberID)
		c.Locals(LocalMemberRoles, []string(nil))
		return c.Next()
	}
}
