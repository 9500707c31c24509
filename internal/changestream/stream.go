package changestream

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const consumerGroup = "matchers"

func shardStreamKey(shard int) string {
	return fmt.Sprintf("queue_index:changes:%d", shard)
}

// ShardFor hashes bucketKey onto one of shardCount shard streams, so all
// events for a bucket land on the same FIFO-ordered stream.
func ShardFor(bucketKey string, shardCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(bucketKey))
	return int(h.Sum32() % uint32(shardCount))
}

// RedisStream is the Redis Streams-backed implementation of Publisher and
// Consumer.
type RedisStream struct {
	client     *redis.Client
	shardCount int
}

// NewRedisStream connects to redisURL and ensures the consumer group exists
// on each of shardCount shard streams.
func NewRedisStream(ctx context.Context, redisURL string, shardCount int) (*RedisStream, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	rs := &RedisStream{client: client, shardCount: shardCount}
	for shard := 0; shard < shardCount; shard++ {
		key := shardStreamKey(shard)
		err := client.XGroupCreateMkStream(ctx, key, consumerGroup, "0").Err()
		if err != nil && !isBusyGroupErr(err) {
			client.Close()
			return nil, err
		}
	}
	slog.Info("connected to Redis change stream", "tag", "changestream", "shards", shardCount)
	return rs, nil
}

func isBusyGroupErr(err error) bool {
	return err != nil && len(err.Error()) >= 9 && err.Error()[:9] == "BUSYGROUP"
}

func (rs *RedisStream) Close() error {
	return rs.client.Close()
}

// Publish appends ev to the shard stream selected by ev.BucketKey.
func (rs *RedisStream) Publish(ctx context.Context, ev Event) error {
	shard := ShardFor(ev.BucketKey, rs.shardCount)
	_, err := rs.client.XAdd(ctx, &redis.XAddArgs{
		Stream: shardStreamKey(shard),
		Values: map[string]interface{}{
			"kind":         string(ev.Kind),
			"bucket_key":   ev.BucketKey,
			"player_id":    ev.PlayerID,
			"time_control": ev.TimeControl,
			"rating":       strconv.Itoa(ev.Rating),
		},
	}).Result()
	return err
}

// ShardConsumer reads one shard stream as a named member of the shared
// consumer group.
type ShardConsumer struct {
	client       *redis.Client
	shard        int
	consumerName string
	claimIdle    time.Duration
}

// Consumer returns a Consumer bound to shard, identified by consumerName
// within the shared consumer group.
func (rs *RedisStream) Consumer(shard int, consumerName string, claimIdle time.Duration) *ShardConsumer {
	return &ShardConsumer{
		client:       rs.client,
		shard:        shard,
		consumerName: consumerName,
		claimIdle:    claimIdle,
	}
}

func (c *ShardConsumer) Shard() int { return c.shard }

// Read first reclaims any entries idle longer than claimIdle (at-least-once
// redelivery for a worker that crashed mid-processing), then blocks for new
// entries on this shard.
func (c *ShardConsumer) Read(ctx context.Context) ([]Event, error) {
	key := shardStreamKey(c.shard)

	claimed, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   key,
		Group:    consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  c.claimIdle,
		Start:    "0",
		Count:    16,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(claimed) > 0 {
		return toEvents(claimed), nil
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{key, ">"},
		Count:    16,
		Block:    5 * time.Second,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return toEvents(streams[0].Messages), nil
}

func (c *ShardConsumer) Ack(ctx context.Context, ev Event) error {
	return c.client.XAck(ctx, shardStreamKey(c.shard), consumerGroup, ev.ID).Err()
}

func toEvents(messages []redis.XMessage) []Event {
	events := make([]Event, 0, len(messages))
	for _, m := range messages {
		ev := Event{ID: m.ID}
		if v, ok := m.Values["kind"].(string); ok {
			ev.Kind = EventKind(v)
		}
		if v, ok := m.Values["bucket_key"].(string); ok {
			ev.BucketKey = v
		}
		if v, ok := m.Values["player_id"].(string); ok {
			ev.PlayerID = v
		}
		if v, ok := m.Values["time_control"].(string); ok {
			ev.TimeControl = v
		}
		if v, ok := m.Values["rating"].(string); ok {
			if n, err := strconv.Atoi(v); err == nil {
				ev.Rating = n
			}
		}
		events = append(events, ev)
	}
	return events
}

var _ Publisher = (*RedisStream)(nil)
var _ Consumer = (*ShardConsumer)(nil)
