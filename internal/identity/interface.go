package identity

import "matchserver/internal/matcherrors"

// PlayerVerifier is the capability the ws package depends on, so its tests
// can substitute a fake instead of a live JWKS endpoint.
type PlayerVerifier interface {
	VerifyPlayer(tokenString string) (playerID string, err error)
}

var _ PlayerVerifier = (*Verifier)(nil)

// Fake is a PlayerVerifier test double mapping fixed tokens to player ids.
type Fake struct {
	Tokens map[string]string
}

// NewFake returns a PlayerVerifier backed by a fixed token-to-player map.
func NewFake(tokens map[string]string) *Fake {
	if tokens == nil {
		tokens = make(map[string]string)
	}
	return &Fake{Tokens: tokens}
}

func (f *Fake) VerifyPlayer(tokenString string) (string, error) {
	if id, ok := f.Tokens[tokenString]; ok {
		return id, nil
	}
	return "", matcherrors.New(matcherrors.KindUnauthenticated, nil)
}

var _ PlayerVerifier = (*Fake)(nil)
