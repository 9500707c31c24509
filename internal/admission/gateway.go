// Package admission implements the Admission Gateway (C3), the
// player-facing control plane for the queue: session open/close and
// join/leave.
package admission

import (
	"context"
	"fmt"
	"time"

	"matchserver/internal/bucket"
	"matchserver/internal/changestream"
	"matchserver/internal/config"
	"matchserver/internal/matcherrors"
	"matchserver/internal/profile"
	"matchserver/internal/queueindex"
	"matchserver/internal/session"
)

// Gateway wires the profile store, Queue Index, change-stream publisher, and
// session-binding store behind the join/leave/open/close operations.
type Gateway struct {
	profile       profile.Store
	queue         queueindex.Store
	stream        changestream.Publisher
	sessions      session.Store
	defaultRating int
	step          int
	timeControls  []string
}

// New builds a Gateway. defaultRating and step come from Config. timeControls
// is the closed set of accepted time-control tags (Config.TimeControls);
// Join/Leave reject any tag outside it with KindMalformedRequest.
func New(profileStore profile.Store, queue queueindex.Store, stream changestream.Publisher, sessions session.Store, defaultRating, step int, timeControls []string) *Gateway {
	return &Gateway{
		profile:       profileStore,
		queue:         queue,
		stream:        stream,
		sessions:      sessions,
		defaultRating: defaultRating,
		step:          step,
		timeControls:  timeControls,
	}
}

// OpenSession records that endpoint now belongs to playerID. A prior binding
// for playerID, if any, is overwritten: the most-recent open wins.
func (g *Gateway) OpenSession(ctx context.Context, endpoint, playerID string) error {
	if err := g.sessions.Open(ctx, endpoint, playerID); err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	return nil
}

// CloseSession removes the binding for endpoint.
func (g *Gateway) CloseSession(ctx context.Context, endpoint string) error {
	if err := g.sessions.Close(ctx, endpoint); err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	return nil
}

// Join enqueues playerID as a waiter under timeControl. The rating lookup
// and queue write are not atomic; a duplicate admission can race and
// produce one benign duplicate attempt on the same bucket, but the
// uniqueness invariant is enforced by Put's conditional insert.
func (g *Gateway) Join(ctx context.Context, timeControl, playerID string) error {
	if !config.AcceptsTimeControl(g.timeControls, timeControl) {
		return matcherrors.New(matcherrors.KindMalformedRequest, fmt.Errorf("unknown time control %q", timeControl))
	}
	rating := g.profile.Rating(ctx, playerID, g.defaultRating)
	bk := bucket.Key(timeControl, bucket.Of(rating, g.step))

	entry := queueindex.Entry{
		BucketKey:   bk,
		PlayerID:    playerID,
		TimeControl: timeControl,
		Rating:      rating,
		JoinedAt:    time.Now(),
		Status:      queueindex.Waiting,
	}
	if err := g.queue.Put(ctx, entry); err != nil {
		return err
	}

	ev := changestream.Event{
		Kind:        changestream.Insert,
		BucketKey:   bk,
		PlayerID:    playerID,
		TimeControl: timeControl,
		Rating:      rating,
	}
	if err := g.stream.Publish(ctx, ev); err != nil {
		return matcherrors.New(matcherrors.KindIndexWriteFailed, err)
	}
	return nil
}

// Leave removes playerID's entry under timeControl, in the bucket computed
// from their current rating. Idempotent: leaving an absent or already-matched
// entry is not an error; an already-matched entry is removed as well.
func (g *Gateway) Leave(ctx context.Context, timeControl, playerID string) error {
	if !config.AcceptsTimeControl(g.timeControls, timeControl) {
		return matcherrors.New(matcherrors.KindMalformedRequest, fmt.Errorf("unknown time control %q", timeControl))
	}
	rating := g.profile.Rating(ctx, playerID, g.defaultRating)
	bk := bucket.Key(timeControl, bucket.Of(rating, g.step))
	if err := g.queue.Delete(ctx, bk, playerID); err != nil {
		return err
	}
	return nil
}
