package profile

import "context"

// Fake is an in-memory Store for Admission and Matcher tests.
type Fake struct {
	Ratings map[string]int
}

// NewFake returns a Store backed by the given ratings map.
func NewFake(ratings map[string]int) *Fake {
	if ratings == nil {
		ratings = make(map[string]int)
	}
	return &Fake{Ratings: ratings}
}

func (f *Fake) Rating(ctx context.Context, playerID string, defaultRating int) int {
	if r, ok := f.Ratings[playerID]; ok {
		return r
	}
	return defaultRating
}

var _ Store = (*Fake)(nil)
