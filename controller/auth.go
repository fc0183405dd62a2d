package controller

import (
	"context"
	"log"
	"net/mail"
	"strconv"
	"strings"

	"heyo-service/model"
	"heyo-service/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for new password hashes.
var BcryptCost = 14

type AuthSignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthRenewTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) AuthSignup(c *fiber.Ctx) error {
	input := new(AuthSignupInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, utils.BadRequest("Review your input"))
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return fail(c, utils.BadRequest("Username and password are required"))
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fail(c, utils.BadRequest("Invalid email address"))
	}

	if _, err := h.Directory.FindByLogin(input.Email); err == nil {
		return fail(c, utils.Conflict("Email is already registered"))
	}
	if _, err := h.Directory.FindByUsername(input.Username); err == nil {
		return fail(c, utils.Conflict("Username is already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return fail(c, err)
	}

	user := &model.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hash),
		Role:      "user",
		AvatarUrl: "https://i.pravatar.cc/100?u=" + input.Username,
	}
	if err := h.Directory.DB.Create(user).Error; err != nil {
		return fail(c, err)
	}

	if h.Enforcer != nil {
		// The role goes through the casbin adapter, not this handle, so a
		// failed write undoes the signup by hand.
		if _, err := h.Enforcer.AddGroupingPolicy(strconv.FormatUint(uint64(user.ID), 10), user.Role); err != nil {
			if undo := h.Directory.DB.Unscoped().Delete(user).Error; undo != nil {
				log.Printf("signup %s: removing user after role failure: %v", user.Username, undo)
			}
			return fail(c, err)
		}
	}

	return success(c, fiber.Map{
		"id": user.ID,
	})
}

func (h *Handler) AuthSignin(c *fiber.Ctx) error {
	input := new(AuthLoginInput)
	if err := c.BodyParser(input); err != nil {
		return fail(c, utils.BadRequest("Review your input"))
	}

	user, err := h.Directory.FindByLogin(strings.TrimSpace(input.Login))
	if err != nil {
		return fail(c, utils.Unauthenticated("Invalid login or password"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return fail(c, utils.Unauthenticated("Invalid login or password"))
	}

	return h.issueTokens(c, strconv.FormatUint(uint64(user.ID), 10), user.Username)
}

func (h *Handler) AuthTokenRenew(c *fiber.Ctx) error {
	renew := new(AuthRenewTokenInput)
	if err := c.BodyParser(renew); err != nil {
		return fail(c, utils.BadRequest("Review your input"))
	}

	claims, err := utils.CheckAndExtractTokenMetadata(renew.RefreshToken, "JWT_REFRESH_KEY")
	if err != nil {
		return fail(c, utils.Unauthenticated("Invalid token"))
	}

	stored, err := h.Tokens.Get(context.Background(), claims.Id)
	if err != nil {
		return fail(c, err)
	}
	if stored != renew.RefreshToken {
		return fail(c, utils.Unauthenticated("Unauthorized, your refresh token was already used"))
	}

	return h.issueTokens(c, claims.Id, claims.Username)
}

func (h *Handler) issueTokens(c *fiber.Ctx, id string, username string) error {
	tokens, err := utils.GenerateTokens(id, username)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Tokens.Save(context.Background(), id, tokens.Refresh); err != nil {
		return fail(c, err)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}
