package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNotFound token 不存在或已过期
var ErrNotFound = errors.New("session not found")

// Kind 会话主体类型
type Kind string

const (
	KindDonor Kind = "donor"
	KindAdmin Kind = "admin"
)

// Session 会话上下文（显式传递，不依赖全局状态）
type Session struct {
	Token      string    `json:"token"`
	Kind       Kind      `json:"kind"`
	SubjectID  string    `json:"subject_id"` // donor_id 或 admin_id
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`      // donor 会话
	Username   string    `json:"username,omitempty"`   // admin 会话
	BloodGroup string    `json:"blood_group,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store Redis 会话存取接口
type Store interface {
	// Create 生成不透明 token 并按 TTL 写入
	Create(ctx context.Context, s *Session) (string, error)

	// Get 按 token 读取；不存在返回 ErrNotFound
	Get(ctx context.Context, token string) (*Session, error)

	// Touch 续期（会话活跃时滑动过期）
	Touch(ctx context.Context, token string) error

	// Delete 登出
	Delete(ctx context.Context, token string) error
}

type redisStore struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisStore 创建 Redis 会话存储；ttl <= 0 时使用 1 小时
func NewRedisStore(c *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisStore{c: c, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (r *redisStore) Create(ctx context.Context, s *Session) (string, error) {
	token := uuid.NewString()
	s.Token = token
	s.CreatedAt = time.Now().UTC()

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.c.Set(ctx, sessionKey(token), payload, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (r *redisStore) Get(ctx context.Context, token string) (*Session, error) {
	val, err := r.c.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *redisStore) Touch(ctx context.Context, token string) error {
	ok, err := r.c.Expire(ctx, sessionKey(token), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, token string) error {
	return r.c.Del(ctx, sessionKey(token)).Err()
}
