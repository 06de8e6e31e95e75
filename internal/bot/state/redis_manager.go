package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/medication-helper/internal/logger"
)

const (
	stateTTL  = 24 * time.Hour
	opTimeout = 3 * time.Second
)

// RedisManager keeps conversation state in Redis so it survives restarts.
// Errors are logged and reads fall back to None.
type RedisManager struct {
	client *redis.Client
	prefix string
}

// NewRedisManager shares an existing client
func NewRedisManager(client *redis.Client) *RedisManager {
	return &RedisManager{client: client, prefix: "medication-helper:user"}
}

func (m *RedisManager) stateKey(userID int64) string {
	return fmt.Sprintf("%s:%d:state", m.prefix, userID)
}

func (m *RedisManager) tempKey(userID int64) string {
	return fmt.Sprintf("%s:%d:temp", m.prefix, userID)
}

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := m.client.Set(ctx, m.stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save user state", "user_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user
func (m *RedisManager) GetUserState(userID int64) string {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	val, err := m.client.Get(ctx, m.stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return None
	}
	if err != nil {
		logger.Warn("Failed to load user state", "user_id", userID, "error", err)
		return None
	}
	return val
}

// ClearUserState clears the state for a user
func (m *RedisManager) ClearUserState(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := m.client.Del(ctx, m.stateKey(userID)).Err(); err != nil {
		logger.Warn("Failed to clear user state", "user_id", userID, "error", err)
	}
}

// SetTempData stores one field of the user's temp hash
func (m *RedisManager) SetTempData(userID int64, key string, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	k := m.tempKey(userID)
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, key, value)
		pipe.Expire(ctx, k, stateTTL)
		return nil
	})
	if err != nil {
		logger.Warn("Failed to save temp data", "user_id", userID, "key", key, "error", err)
	}
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	val, err := m.client.HGet(ctx, m.tempKey(userID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		logger.Warn("Failed to load temp data", "user_id", userID, "key", key, "error", err)
		return "", false
	}
	return val, true
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := m.client.Del(ctx, m.tempKey(userID)).Err(); err != nil {
		logger.Warn("Failed to clear temp data", "user_id", userID, "error", err)
	}
}
