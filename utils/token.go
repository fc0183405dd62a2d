package utils

import (
	"errors"
	"strconv"
	"time"

	"heyo-service/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens struct to describe tokens object.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenMetadata struct to describe metadata in JWT.
type TokenMetadata struct {
	Id       string
	Username string
	Exp      int64
}

// UserID returns the numeric id carried in the token.
func (m *TokenMetadata) UserID() (uint, error) {
	id, err := strconv.ParseUint(m.Id, 10, 64)
	return uint(id), err
}

// GenerateTokens issues a new Access & Refresh pair.
func GenerateTokens(id string, username string) (*Tokens, error) {
	accessToken, err := generateToken(id, username, "JWT_ACCESS_EXPIRE", "JWT_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(id, username, "JWT_REFRESH_EXPIRE", "JWT_REFRESH_KEY")
	if err != nil {
		return nil, err
	}

	return &Tokens{
		Access:  accessToken,
		Refresh: refreshToken,
	}, nil
}

func generateToken(id string, username string, expire string, key string) (string, error) {
	minutesCount, _ := strconv.Atoi(config.Config(expire))

	claims := jwt.MapClaims{}

	claims["id"] = id
	claims["username"] = username
	claims["jti"] = uuid.NewString()
	claims["exp"] = time.Now().Add(time.Minute * time.Duration(minutesCount)).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString([]byte(config.Config(key)))
}

func CheckAndExtractTokenMetadata(token string, key string) (*TokenMetadata, error) {
	t, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Config(key)), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token claims")
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	exp, _ := claims["exp"].(float64)
	if id == "" {
		return nil, errors.New("token has no subject")
	}

	return &TokenMetadata{
		Id:       id,
		Username: username,
		Exp:      int64(exp),
	}, nil
}
