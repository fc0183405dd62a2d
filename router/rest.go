package router

import (
	"heyo-service/controller"
	"heyo-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App, h *controller.Handler) {
	api := app.Group("/v1", logger.New())

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", h.AuthSignup)
	auth.Post("/signin", h.AuthSignin)
	auth.Post("/token/renew", h.AuthTokenRenew)

	// Users
	users := api.Group("/users", middleware.JWT())
	users.Get("/me", h.UserMe)
	users.Get("/search", h.UserSearch)
	users.Get("/friends", h.UserFriends)
	users.Post("/friends/:friendId", h.UserSendFriendRequest)
	users.Delete("/friends/:friendId", h.UserRemoveFriend)
	users.Post("/friend-requests/:notificationId/accept", h.UserAcceptFriendRequest)
	users.Post("/friend-requests/:notificationId/decline", h.UserDeclineFriendRequest)
	users.Get("/:id", h.UserByID)

	// Chat
	chat := api.Group("/chat", middleware.JWT())
	chat.Get("/conversations", h.ChatConversations)
	chat.Get("/conversations/search", h.ChatSearch)
	chat.Post("/conversations/create/:friendId", h.ChatCreate)
	chat.Get("/conversations/:partnerId", h.ChatConversation)
	chat.Post("/conversations/:partnerId/read", h.ChatMarkRead)
	chat.Post("/send", h.ChatSend)
	chat.Get("/unread-count", h.ChatUnreadCount)
	chat.Get("/friends/without-chat", h.ChatFriendsWithoutChat)

	// Notifications
	notifications := api.Group("/notifications", middleware.JWT())
	notifications.Get("", h.NotificationList)
	notifications.Get("/unread-count", h.NotificationUnreadCount)
	notifications.Post("/read-all", h.NotificationMarkAllRead)
	notifications.Post("/:id/read", h.NotificationMarkRead)

	// Admin
	admin := api.Group("/admin", middleware.JWT(), middleware.RBAC(h.Enforcer))
	admin.Get("/presence", h.AdminPresence)
}
