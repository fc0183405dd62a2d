package controller

import (
	"heyo-service/directory"

	"github.com/gofiber/fiber/v2"
)

// AdminPresence lists users currently flagged online.
func (h *Handler) AdminPresence(c *fiber.Ctx) error {
	users, err := h.Directory.OnlineUsers()
	if err != nil {
		return fail(c, err)
	}
	return success(c, directory.ToDTOs(users))
}
