package middleware

import (
	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
)

// RBAC checks the authenticated subject against the enforcer's policy for
// the request path and method. Must run after JWT.
func RBAC(enforcer *casbin.Enforcer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, err := Subject(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":   "error",
				"category": "UNAUTHENTICATED",
				"message":  "Unauthorized",
				"data":     nil,
			})
		}

		accepted, err := enforcer.Enforce(subject, c.Path(), c.Method())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":   "error",
				"category": "INTERNAL",
				"message":  "Internal server error",
				"data":     nil,
			})
		}

		if !accepted {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":   "error",
				"category": "FORBIDDEN",
				"message":  "Forbidden",
				"data":     nil,
			})
		}

		return c.Next()
	}
}
