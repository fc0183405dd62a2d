package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"heyo-service/config"

	"github.com/redis/go-redis/v9"
)

const (
	RedisTokens  = 0
	RedisSockets = 1
)

var Redis = make(map[int]*redis.Client)

func RedisConnect() {
	for _, db := range strings.Split(config.Config("REDIS_DB"), ",") {
		dbNumber, err := strconv.Atoi(strings.TrimSpace(db))
		if err != nil {
			panic(fmt.Sprintf("invalid REDIS_DB entry %q", db))
		}

		Redis[dbNumber] = redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf(
				"%s:%s",
				config.Config("REDIS_HOST"),
				config.Config("REDIS_PORT"),
			),
			Password: config.Config("REDIS_PASSWORD"),
			DB:       dbNumber,
		})
	}

	log.Printf("Connections opened to Redis")
}

// RefreshTokens keeps the single live refresh token of every user.
type RefreshTokens struct {
	Client *redis.Client
}

func refreshKey(userID string) string {
	return "refresh:" + userID
}

func (s RefreshTokens) Save(ctx context.Context, userID string, token string) error {
	return s.Client.Set(ctx, refreshKey(userID), token, 0).Err()
}

// Get returns "" with no error when the user has no refresh token.
func (s RefreshTokens) Get(ctx context.Context, userID string) (string, error) {
	token, err := s.Client.Get(ctx, refreshKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}
