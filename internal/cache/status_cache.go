package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/utils"
)

// snapshots outlive the chain long enough for an operator to look at them
const snapshotTTL = 1 * time.Hour

// ErrSnapshotNotFound is returned when no snapshot exists for a session.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// StatusCache holds the live view of running chains for the introspection
// endpoints. Like persistence, it is optional: a nil StatusCache means the
// deployment runs without one.
type StatusCache interface {
	SetSnapshot(ctx context.Context, snapshot *models.SessionSnapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisStatusCache struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisStatusCache(client *redis.Client, logger utils.Logger) StatusCache {
	return &redisStatusCache{
		client: client,
		logger: logger,
	}
}

func snapshotKey(sessionID string) string {
	return "quizchain:session:" + sessionID
}

func (r *redisStatusCache) SetSnapshot(ctx context.Context, snapshot *models.SessionSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(snapshot.ID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("cache session snapshot: %w", err)
	}
	return nil
}

func (r *redisStatusCache) GetSnapshot(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session snapshot: %w", err)
	}

	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *redisStatusCache) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, snapshotKey(sessionID)).Err()
}
