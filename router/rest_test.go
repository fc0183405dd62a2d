package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"heyo-service/chat"
	"heyo-service/controller"
	"heyo-service/conversation"
	"heyo-service/database"
	"heyo-service/directory"
	"heyo-service/friendship"
	"heyo-service/notification"
	"heyo-service/realtime"
	"heyo-service/utils"

	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memoryTokens) Save(_ context.Context, userID string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *memoryTokens) Get(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

type countingPusher struct {
	mu     sync.Mutex
	events map[string]int
}

func (p *countingPusher) Emit(room string, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[event]++
}

type api struct {
	t        *testing.T
	app      *fiber.App
	handler  *controller.Handler
	enforcer *casbin.Enforcer
	pusher   *countingPusher
}

func newAPI(t *testing.T) *api {
	t.Helper()
	t.Setenv("JWT_ACCESS_KEY", "access-secret")
	t.Setenv("JWT_ACCESS_EXPIRE", "15")
	t.Setenv("JWT_REFRESH_KEY", "refresh-secret")
	t.Setenv("JWT_REFRESH_EXPIRE", "60")
	controller.BcryptCost = bcrypt.MinCost

	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	enforcer, err := database.Casbin(db)
	require.NoError(t, err)

	dir := directory.New(db)
	sink := notification.NewSink(db, nil)
	chatService := chat.NewService(dir, conversation.NewStore(db), sink)
	pusher := &countingPusher{events: map[string]int{}}

	app := fiber.New(fiber.Config{StrictRouting: true})
	handler := &controller.Handler{
		Directory:  dir,
		Chat:       chatService,
		Friendship: friendship.NewService(db, dir, sink),
		Sink:       sink,
		Gateway:    realtime.NewGateway(chatService, dir, pusher),
		Tokens:     &memoryTokens{tokens: map[string]string{}},
		Enforcer:   enforcer,
	}
	Rest(app, handler)

	return &api{t: t, app: app, handler: handler, enforcer: enforcer, pusher: pusher}
}

type envelope struct {
	Status   string          `json:"status"`
	Category string          `json:"category"`
	Message  *string         `json:"message"`
	Data     json.RawMessage `json:"data"`
}

func (a *api) call(method string, path string, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (a *api) decode(env envelope, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, v))
}

type account struct {
	id      uint
	access  string
	refresh string
}

func (a *api) register(username string) account {
	a.t.Helper()
	status, env := a.call("POST", "/v1/auth/signup", "", fiber.Map{
		"username": username,
		"email":    username + "@heyo.test",
		"password": "secret-" + username,
	})
	require.Equal(a.t, fiber.StatusOK, status)
	var created struct {
		ID uint `json:"id"`
	}
	a.decode(env, &created)

	status, env = a.call("POST", "/v1/auth/signin", "", fiber.Map{
		"login":    username,
		"password": "secret-" + username,
	})
	require.Equal(a.t, fiber.StatusOK, status)
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	a.decode(env, &tokens)

	return account{id: created.ID, access: tokens.Access, refresh: tokens.Refresh}
}

func TestChatFlowOverREST(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")

	// strangers cannot chat
	status, env := a.call("POST", "/v1/chat/send", alice.access, fiber.Map{"receiverId": bob.id, "content": "hi"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Category)

	// friend request, then duplicate
	status, _ = a.call("POST", fmt.Sprintf("/v1/users/friends/%d", bob.id), alice.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, env = a.call("POST", fmt.Sprintf("/v1/users/friends/%d", bob.id), alice.access, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Friend request already sent", *env.Message)

	// bob accepts from his inbox
	status, env = a.call("GET", "/v1/notifications?page=0&size=10", bob.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var inbox struct {
		Content []struct {
			ID   uint   `json:"id"`
			Type string `json:"type"`
		} `json:"content"`
		Total int64 `json:"total"`
	}
	a.decode(env, &inbox)
	require.Len(t, inbox.Content, 1)
	assert.Equal(t, "FRIEND_REQUEST", inbox.Content[0].Type)
	assert.Equal(t, int64(1), inbox.Total)

	status, _ = a.call("POST", fmt.Sprintf("/v1/users/friend-requests/%d/accept", inbox.Content[0].ID), bob.access, nil)
	require.Equal(t, fiber.StatusOK, status)

	// message goes through and is pushed to both parties
	status, env = a.call("POST", "/v1/chat/send", alice.access, fiber.Map{"receiverId": fmt.Sprint(bob.id), "content": "hi"})
	require.Equal(t, fiber.StatusOK, status)
	var sent chat.MessageDTO
	a.decode(env, &sent)
	assert.Equal(t, "hi", sent.Content)
	assert.Equal(t, 2, a.pusher.events[realtime.ChannelMessages])

	status, env = a.call("GET", "/v1/chat/unread-count", bob.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var unread struct {
		Count int64 `json:"count"`
	}
	a.decode(env, &unread)
	assert.Equal(t, int64(1), unread.Count)

	status, env = a.call("GET", "/v1/chat/conversations", bob.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var conversations []chat.ConversationDTO
	a.decode(env, &conversations)
	require.Len(t, conversations, 1)
	assert.Equal(t, alice.id, conversations[0].PartnerID)
	assert.Equal(t, int64(1), conversations[0].UnreadCount)

	status, _ = a.call("POST", fmt.Sprintf("/v1/chat/conversations/%d/read", alice.id), bob.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	_, env = a.call("GET", "/v1/chat/unread-count", bob.access, nil)
	a.decode(env, &unread)
	assert.Zero(t, unread.Count)

	status, env = a.call("GET", fmt.Sprintf("/v1/chat/conversations/%d", bob.id), alice.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var history []chat.MessageDTO
	a.decode(env, &history)
	require.Len(t, history, 1)
	assert.True(t, history[0].Read)

	status, env = a.call("GET", "/v1/chat/conversations/search?query=BO", alice.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	a.decode(env, &conversations)
	assert.Len(t, conversations, 1)

	status, env = a.call("GET", "/v1/chat/friends/without-chat", alice.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var lonely []directory.UserDTO
	a.decode(env, &lonely)
	assert.Empty(t, lonely)

	status, env = a.call("GET", "/v1/users/friends", alice.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var friends []directory.UserDTO
	a.decode(env, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)
	assert.Equal(t, "https://i.pravatar.cc/100?u=bob", friends[0].AvatarUrl)
}

func TestErrorsCarryCategories(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	status, env := a.call("GET", "/v1/chat/conversations", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "UNAUTHENTICATED", env.Category)

	status, env = a.call("GET", "/v1/chat/conversations/9999", alice.access, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Category)

	status, env = a.call("POST", "/v1/chat/conversations/create/abc", alice.access, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", env.Category)

	status, env = a.call("POST", "/v1/notifications/9999/read", alice.access, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Notification not found or not authorized", *env.Message)

	status, env = a.call("POST", "/v1/auth/signup", "", fiber.Map{
		"username": "alice",
		"email":    "other@heyo.test",
		"password": "x",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Username is already registered", *env.Message)

	status, _ = a.call("POST", "/v1/auth/signin", "", fiber.Map{"login": "alice", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSignupIsUndoneWhenRoleCannotBeStored(t *testing.T) {
	a := newAPI(t)

	policyDB, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	enforcer, err := database.Casbin(policyDB)
	require.NoError(t, err)
	sqlDB, err := policyDB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	a.handler.Enforcer = enforcer

	signup := fiber.Map{"username": "carol", "email": "carol@heyo.test", "password": "secret"}
	status, env := a.call("POST", "/v1/auth/signup", "", signup)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", env.Category)

	_, err = a.handler.Directory.FindByUsername("carol")
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	// the name is free again once roles can be stored
	a.handler.Enforcer = a.enforcer
	status, _ = a.call("POST", "/v1/auth/signup", "", signup)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRefreshTokenRotation(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	status, env := a.call("POST", "/v1/auth/token/renew", "", fiber.Map{"refresh_token": alice.refresh})
	require.Equal(t, fiber.StatusOK, status)
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	a.decode(env, &tokens)
	assert.NotEqual(t, alice.refresh, tokens.Refresh)

	status, _ = a.call("POST", "/v1/auth/token/renew", "", fiber.Map{"refresh_token": alice.refresh})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = a.call("GET", "/v1/users/me", tokens.Access, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAdminPresenceRequiresRole(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	root := a.register("root")

	status, _ := a.call("GET", "/v1/admin/presence", alice.access, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	_, err := a.enforcer.AddGroupingPolicy(fmt.Sprint(root.id), "admin")
	require.NoError(t, err)

	status, env := a.call("GET", "/v1/admin/presence", root.access, nil)
	require.Equal(t, fiber.StatusOK, status)
	var online []directory.UserDTO
	a.decode(env, &online)
	assert.Empty(t, online)
}
