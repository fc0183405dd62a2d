package controller

import (
	"context"
	"log"
	"strconv"

	"heyo-service/chat"
	"heyo-service/directory"
	"heyo-service/friendship"
	"heyo-service/middleware"
	"heyo-service/notification"
	"heyo-service/realtime"
	"heyo-service/utils"

	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
)

// TokenStore keeps the current refresh token of each user.
type TokenStore interface {
	Save(ctx context.Context, userID string, token string) error
	Get(ctx context.Context, userID string) (string, error)
}

type Handler struct {
	Directory  *directory.Directory
	Chat       *chat.Service
	Friendship *friendship.Service
	Sink       *notification.Sink
	Gateway    *realtime.Gateway
	Tokens     TokenStore
	Enforcer   *casbin.Enforcer
}

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, err error) error {
	status := utils.Status(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   "error",
		"category": utils.Category(err),
		"message":  utils.Message(err),
		"data":     nil,
	})
}

func currentUser(c *fiber.Ctx) (uint, error) {
	id, err := middleware.CurrentUserID(c)
	if err != nil {
		return 0, utils.Unauthenticated("Unauthorized")
	}
	return id, nil
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequest("Invalid " + name)
	}
	return uint(id), nil
}

// userAndParam resolves the caller and one numeric path parameter.
func userAndParam(c *fiber.Ctx, name string) (uint, uint, error) {
	userID, err := currentUser(c)
	if err != nil {
		return 0, 0, err
	}
	id, err := idParam(c, name)
	return userID, id, err
}
