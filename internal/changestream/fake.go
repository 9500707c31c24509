package changestream

import (
	"context"
	"strconv"
	"sync"
)

// Fake is an in-process Publisher+Consumer pair used by Matcher tests. It
// routes events to per-shard queues the same way RedisStream routes them to
// shard streams, without requiring a live Redis.
type Fake struct {
	mu         sync.Mutex
	shardCount int
	queues     [][]Event
	nextID     int
}

// NewFake returns an empty fake change stream with shardCount shards.
func NewFake(shardCount int) *Fake {
	return &Fake{
		shardCount: shardCount,
		queues:     make([][]Event, shardCount),
	}
}

func (f *Fake) Publish(ctx context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev.ID = strconv.Itoa(f.nextID)
	shard := ShardFor(ev.BucketKey, f.shardCount)
	f.queues[shard] = append(f.queues[shard], ev)
	return nil
}

// Consumer returns a Consumer bound to shard backed by this fake's queue.
func (f *Fake) Consumer(shard int) *FakeConsumer {
	return &FakeConsumer{fake: f, shard: shard}
}

// FakeConsumer drains one shard's in-memory queue.
type FakeConsumer struct {
	fake  *Fake
	shard int
}

func (c *FakeConsumer) Shard() int { return c.shard }

func (c *FakeConsumer) Read(ctx context.Context) ([]Event, error) {
	c.fake.mu.Lock()
	defer c.fake.mu.Unlock()
	events := c.fake.queues[c.shard]
	c.fake.queues[c.shard] = nil
	return events, nil
}

func (c *FakeConsumer) Ack(ctx context.Context, ev Event) error {
	return nil
}

var _ Publisher = (*Fake)(nil)
var _ Consumer = (*FakeConsumer)(nil)
