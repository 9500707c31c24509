package matcher

import (
	"context"
	"math/rand"

	"matchserver/internal/bucket"
	"matchserver/internal/queueindex"
)

// findCandidate runs the bucket-expansion search of the matching loop: own
// bucket first, then an expanding ring of offsets [step, 2*step, ...,
// maxRange] in a randomly chosen direction, shuffled at each ring so both
// directions are tried in random order. Returns ok=false if no candidate
// exists within maxRange.
func findCandidate(ctx context.Context, store queueindex.Store, waiter queueindex.Entry, step, maxRange int, rng *rand.Rand) (queueindex.Entry, bool, error) {
	ownBucket := bucket.Of(waiter.Rating, step)
	if c, ok, err := pickFromBucket(ctx, store, bucket.Key(waiter.TimeControl, ownBucket), waiter.PlayerID, rng); err != nil {
		return queueindex.Entry{}, false, err
	} else if ok {
		return c, true, nil
	}

	startDirection := 1
	if rng.Intn(2) == 0 {
		startDirection = -1
	}

	for r := step; r <= maxRange; r += step {
		offsets := []int{r * startDirection, -r * startDirection}
		rng.Shuffle(len(offsets), func(i, j int) { offsets[i], offsets[j] = offsets[j], offsets[i] })

		for _, offset := range offsets {
			candidateBucket := bucket.Of(waiter.Rating+offset, step)
			bk := bucket.Key(waiter.TimeControl, candidateBucket)
			if c, ok, err := pickFromBucket(ctx, store, bk, waiter.PlayerID, rng); err != nil {
				return queueindex.Entry{}, false, err
			} else if ok {
				return c, true, nil
			}
		}
	}

	return queueindex.Entry{}, false, nil
}

// waiterStillWaiting reports whether waiter's own entry is still present and
// waiting, used to stop the ConflictingWaiter retry loop when the conflict
// was W itself rather than the candidate.
func waiterStillWaiting(ctx context.Context, store queueindex.Store, waiter queueindex.Entry, step int) (bool, error) {
	bk := bucket.Key(waiter.TimeControl, bucket.Of(waiter.Rating, step))
	entries, err := store.ScanBucket(ctx, bk)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.PlayerID == waiter.PlayerID && e.Status == queueindex.Waiting {
			return true, nil
		}
	}
	return false, nil
}

// pickFromBucket scans bucketKey, excludes the waiter itself, and picks one
// remaining candidate uniformly at random. Randomisation is mandatory:
// deterministic ordering would funnel all concurrent matchers onto the same
// oldest entry and maximise transaction collisions.
func pickFromBucket(ctx context.Context, store queueindex.Store, bucketKey, excludePlayerID string, rng *rand.Rand) (queueindex.Entry, bool, error) {
	entries, err := store.ScanBucket(ctx, bucketKey)
	if err != nil {
		return queueindex.Entry{}, false, err
	}

	candidates := entries[:0:0]
	for _, e := range entries {
		if e.PlayerID != excludePlayerID && e.Status == queueindex.Waiting {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return queueindex.Entry{}, false, nil
	}
	return candidates[rng.Intn(len(candidates))], true, nil
}
