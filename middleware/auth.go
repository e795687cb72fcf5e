// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by MemberContextMiddleware.
const (
	LocalMemberID    = "member_id"
	LocalMemberName  = "member_name"
	LocalMemberRoles = "member_roles"
)

// MemberContextMiddleware reads the acting member from X-Member-ID, X-Member-Name and
// X-Member-Roles. Routes under /s/ require X-Member-ID.
func MemberContextMiddleware(logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		memberID := strings.TrimSpace(c.Get("X-Member-ID"))
		path := c.Path()

		if strings.HasPrefix(path, "/s/") && memberID == "" {
			logger.Info("❌ [MEMBER_CTX] X-Member-ID missing on secured route", zap.String("path", path))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Member-ID",
			})
		}

		c.Locals(LocalMemberID, memberID)
		c.Locals(LocalMemberName, strings.TrimSpace(c.Get("X-Member-Name")))
		c.Locals(LocalMemberRoles, splitRoles(c.Get("X-Member-Roles")))

		logger.Debug("👤 [MEMBER_CTX] member context",
			zap.String("member", memberID),
			zap.String("path", path),
		)
		return c.Next()
	}
}

func splitRoles(header string) []string {
	var roles []string
	for _, r := range strings.Split(header, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// MemberID returns the acting member, or "" outside the member context.
func MemberID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalMemberID).(string)
	return id
}

// MemberName falls back to the member ID.
func MemberName(c *fiber.Ctx) string {
	if name, _ := c.Locals(LocalMemberName).(string); name != "" {
		return name
	}
	return MemberID(c)
}

func MemberRoles(c *fiber.Ctx) []string {
	roles, _ := c.Locals(LocalMemberRoles).([]string)
	return roles
}

// RequireRole rejects members holding none of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, have := range MemberRoles(c) {
			for _, want := range roles {
				if have == want {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "requires one of roles: " + strings.Join(roles, ", "),
		})
	}
}
