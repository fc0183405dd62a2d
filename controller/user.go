package controller

import (
	"heyo-service/directory"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) UserMe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	user, err := h.Directory.FindByID(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, directory.ToDTO(*user))
}

func (h *Handler) UserByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.Directory.FindByID(id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, directory.ToDTO(*user))
}

func (h *Handler) UserSearch(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	users, err := h.Directory.Search(c.Query("query"), userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, directory.ToDTOs(users))
}

func (h *Handler) UserFriends(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	friends, err := h.Friendship.Friends(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, friends)
}

func (h *Handler) UserSendFriendRequest(c *fiber.Ctx) error {
	userID, friendID, err := userAndParam(c, "friendId")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Friendship.SendRequest(userID, friendID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}

func (h *Handler) UserRemoveFriend(c *fiber.Ctx) error {
	userID, friendID, err := userAndParam(c, "friendId")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Friendship.Remove(userID, friendID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}

func (h *Handler) UserAcceptFriendRequest(c *fiber.Ctx) error {
	userID, notificationID, err := userAndParam(c, "notificationId")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Friendship.Accept(userID, notificationID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}

func (h *Handler) UserDeclineFriendRequest(c *fiber.Ctx) error {
	userID, notificationID, err := userAndParam(c, "notificationId")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Friendship.Decline(userID, notificationID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}
