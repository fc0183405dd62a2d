package controller

import (
	"heyo-service/realtime"
	"heyo-service/utils"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ChatConversations(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	conversations, err := h.Chat.GetConversations(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, conversations)
}

func (h *Handler) ChatConversation(c *fiber.Ctx) error {
	userID, partnerID, err := userAndParam(c, "partnerId")
	if err != nil {
		return fail(c, err)
	}

	messages, err := h.Chat.GetConversation(userID, partnerID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, messages)
}

// ChatSend is the non-realtime send. The stored message is pushed to live
// connections exactly like a socket send.
func (h *Handler) ChatSend(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	input := new(realtime.SendFrame)
	if err := c.BodyParser(input); err != nil {
		return fail(c, utils.BadRequest("Review your input"))
	}

	msg, err := h.Chat.SendMessage(userID, uint(input.ReceiverID), input.Content)
	if err != nil {
		return fail(c, err)
	}

	if h.Gateway != nil {
		h.Gateway.Deliver(msg)
	}
	return success(c, msg)
}

func (h *Handler) ChatMarkRead(c *fiber.Ctx) error {
	userID, partnerID, err := userAndParam(c, "partnerId")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Chat.MarkAsRead(userID, partnerID); err != nil {
		return fail(c, err)
	}
	return success(c, nil)
}

func (h *Handler) ChatUnreadCount(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	count, err := h.Chat.UnreadCount(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, fiber.Map{"count": count})
}

func (h *Handler) ChatSearch(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	conversations, err := h.Chat.SearchConversations(userID, c.Query("query"))
	if err != nil {
		return fail(c, err)
	}
	return success(c, conversations)
}

func (h *Handler) ChatCreate(c *fiber.Ctx) error {
	userID, friendID, err := userAndParam(c, "friendId")
	if err != nil {
		return fail(c, err)
	}

	conversation, err := h.Chat.CreateChatWithFriend(userID, friendID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, conversation)
}

func (h *Handler) ChatFriendsWithoutChat(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	friends, err := h.Chat.FriendsWithoutChat(userID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, friends)
}
