package middleware

import (
	"errors"
	"strconv"
	"strings"

	"heyo-service/config"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func JWT() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS512",
			Key:    []byte(config.Config("JWT_ACCESS_KEY")),
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if strings.EqualFold(err.Error(), "missing or malformed JWT") {
				return c.Status(fiber.StatusBadRequest).
					JSON(fiber.Map{
						"status":   "error",
						"category": "UNAUTHENTICATED",
						"message":  "Missing or malformed JWT",
						"data":     nil,
					})
			}
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{
					"status":   "error",
					"category": "UNAUTHENTICATED",
					"message":  "Invalid or expired JWT",
					"data":     nil,
				})
		},
	})
}

// Subject returns the "id" claim of the verified token.
func Subject(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("no token in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", errors.New("token has no subject")
	}
	return id, nil
}

// CurrentUserID returns the numeric id of the authenticated user.
func CurrentUserID(c *fiber.Ctx) (uint, error) {
	subject, err := Subject(c)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(subject, 10, 64)
	return uint(id), err
}
