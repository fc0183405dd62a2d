package controller

import "github.com/gofiber/fiber/v2"

func (h *Handler) NotificationList(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	notifications, total, err := h.Sink.List(userID, page, size)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.Map{
		"content": notifications,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}

func (h *Handler) NotificationUnreadCount(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	count, err := h.Sink.UnreadCount(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.Map{"count": count})
}

func (h *Handler) NotificationMarkRead(c *fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Sink.MarkRead(id, userID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}

func (h *Handler) NotificationMarkAllRead(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Sink.MarkAllRead(userID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}
