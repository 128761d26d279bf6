package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "liquidhire:session:"

// SessionInfo is what the registry stores per live session.
type SessionInfo struct {
	UserID    uint      `json:"user_id"`
	JobRole   string    `json:"job_role"`
	StartedAt time.Time `json:"started_at"`
}

// Registry tracks live interview sessions in Redis so any instance can
// see what is running. Entries expire unless the owning connection keeps
// heartbeating, so a crashed instance's sessions age out on their own.
// A nil Redis client disables the registry.
type Registry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRegistry(rdb *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Registry{rdb: rdb, ttl: ttl}
}

// TTL returns the entry lifetime; heartbeats should run well inside it.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

func (r *Registry) enabled() bool {
	return r != nil && r.rdb != nil
}

// Register records a new live session.
func (r *Registry) Register(ctx context.Context, sessionID string, info SessionInfo) error {
	if !r.enabled() {
		return nil
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal session info: %w", err)
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+sessionID, data, r.ttl).Err()
}

// Heartbeat extends a session's lifetime.
func (r *Registry) Heartbeat(ctx context.Context, sessionID string) error {
	if !r.enabled() {
		return nil
	}
	return r.rdb.Expire(ctx, sessionKeyPrefix+sessionID, r.ttl).Err()
}

// Unregister drops a session immediately.
func (r *Registry) Unregister(ctx context.Context, sessionID string) error {
	if !r.enabled() {
		return nil
	}
	return r.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

// Active lists the session IDs currently registered.
func (r *Registry) Active(ctx context.Context) ([]string, error) {
	if !r.enabled() {
		return nil, nil
	}
	var ids []string
	iter := r.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(sessionKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Info fetches one session's registry entry.
func (r *Registry) Info(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if !r.enabled() {
		return nil, redis.Nil
	}
	data, err := r.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		return nil, err
	}
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal session info: %w", err)
	}
	return &info, nil
}
