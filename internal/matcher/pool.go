// Package matcher implements the Matcher (C4), the algorithmic core: a
// stream-driven worker pool that pairs waiters via the bucket-expansion
// search and a conditional pairing transaction.
package matcher

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"matchserver/internal/changestream"
	"matchserver/internal/matcherrors"
	"matchserver/internal/notifier"
	"matchserver/internal/queueindex"
)

// Pool runs one worker goroutine per change-stream shard. Each worker owns
// one consumer, giving FIFO delivery per shard; workers coordinate
// correctness entirely through the Queue Index's conditional transaction,
// never through in-process locks.
type Pool struct {
	queue    queueindex.Store
	notify   *notifier.Notifier
	step     int
	maxRange int
}

// NewPool builds a Matcher worker pool over queue and notify, using step and
// maxRange for the bucket-expansion search.
func NewPool(queue queueindex.Store, notify *notifier.Notifier, step, maxRange int) *Pool {
	return &Pool{queue: queue, notify: notify, step: step, maxRange: maxRange}
}

// Run starts one worker per consumer and blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context, consumers []changestream.Consumer) {
	done := make(chan struct{}, len(consumers))
	for _, c := range consumers {
		go func(c changestream.Consumer) {
			p.runWorker(ctx, c)
			done <- struct{}{}
		}(c)
	}
	for range consumers {
		<-done
	}
}

func (p *Pool) runWorker(ctx context.Context, consumer changestream.Consumer) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(consumer.Shard())))
	log := slog.With("tag", "matcher", "shard", consumer.Shard())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, err := consumer.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("consumer read failed", "err", err)
			continue
		}

		for _, ev := range events {
			if ev.Kind != changestream.Insert {
				if err := consumer.Ack(ctx, ev); err != nil {
					log.Warn("ack failed", "err", err)
				}
				continue
			}
			p.processInsert(ctx, ev, rng, log)
			if err := consumer.Ack(ctx, ev); err != nil {
				log.Warn("ack failed", "err", err)
			}
		}
	}
}

// processInsert runs the matching loop for one INSERT event: search, pair,
// and on ConflictingWaiter re-search from scratch. Each conflict strictly
// reduces the count of waiting candidates visible to this processor, so no
// fixed retry cap is needed.
func (p *Pool) processInsert(ctx context.Context, ev changestream.Event, rng *rand.Rand, log *slog.Logger) {
	waiter := queueindex.Entry{
		BucketKey:   ev.BucketKey,
		PlayerID:    ev.PlayerID,
		TimeControl: ev.TimeControl,
		Rating:      ev.Rating,
		Status:      queueindex.Waiting,
	}

	for {
		candidate, ok, err := findCandidate(ctx, p.queue, waiter, p.step, p.maxRange, rng)
		if err != nil {
			log.Warn("bucket search failed", "player_id", waiter.PlayerID, "err", err)
			return
		}
		if !ok {
			return
		}

		now := time.Now()
		game := queueindex.Game{
			GameID:      GameID(waiter.PlayerID, candidate.PlayerID, now.Unix()),
			TimeControl: waiter.TimeControl,
			Status:      "active",
			CreatedAt:   now,
		}
		if rng.Intn(2) == 0 {
			game.WhitePlayerID, game.BlackPlayerID = waiter.PlayerID, candidate.PlayerID
		} else {
			game.WhitePlayerID, game.BlackPlayerID = candidate.PlayerID, waiter.PlayerID
		}

		err = p.queue.PairTxn(ctx, waiter, candidate, game)
		switch {
		case err == nil:
			p.announce(ctx, game, log)
			return
		case matcherrors.Is(err, matcherrors.KindConflictingWaiter):
			// The conflict may be W itself (a duplicate delivery of an event
			// whose waiter was already paired elsewhere), not just the
			// candidate. Re-scanning would otherwise spin forever trying to
			// pair an already-matched W against a fresh candidate each time.
			stillWaiting, err := waiterStillWaiting(ctx, p.queue, waiter, p.step)
			if err != nil {
				log.Warn("waiting check failed", "player_id", waiter.PlayerID, "err", err)
				return
			}
			if !stillWaiting {
				return
			}
			log.Info("conflicting waiter, retrying search", "player_id", waiter.PlayerID, "candidate_id", candidate.PlayerID)
			continue
		default:
			log.Warn("pair_txn failed", "player_id", waiter.PlayerID, "candidate_id", candidate.PlayerID, "err", err)
			return
		}
	}
}

func (p *Pool) announce(ctx context.Context, game queueindex.Game, log *slog.Logger) {
	pairs := []struct {
		playerID string
		opponent string
		color    string
	}{
		{game.WhitePlayerID, game.BlackPlayerID, "white"},
		{game.BlackPlayerID, game.WhitePlayerID, "black"},
	}
	for _, pair := range pairs {
		payload := map[string]string{
			"action":       "game_matched",
			"game_id":      game.GameID,
			"opponent_id":  pair.opponent,
			"color":        pair.color,
			"time_control": game.TimeControl,
		}
		if err := p.notify.Notify(ctx, pair.playerID, payload); err != nil && !matcherrors.Is(err, matcherrors.KindNotConnected) && !matcherrors.Is(err, matcherrors.KindGone) {
			log.Warn("notify failed", "player_id", pair.playerID, "game_id", game.GameID, "err", err)
		}
	}
}
