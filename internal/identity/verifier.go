// Package identity adapts the channel-open handshake to an external JWKS
// identity authority. Identity issuance itself is out of scope for this
// service; this package only calls out to it.
package identity

import (
	"fmt"
	"net/url"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"matchserver/internal/matcherrors"
)

// Verifier validates bearer tokens against a JWKS endpoint and extracts the
// verified player id.
type Verifier struct {
	jwks   keyfunc.Keyfunc
	issuer string
}

// NewVerifier builds a Verifier against baseURL's well-known JWKS document.
func NewVerifier(baseURL string) (*Verifier, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("identity JWKS base URL is not set")
	}
	jwksURL := baseURL + "/.well-known/jwks.json"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity base URL: %w", err)
	}
	issuer := u.Scheme + "://" + u.Host

	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, err
	}
	return &Verifier{jwks: jwks, issuer: issuer}, nil
}

// VerifyPlayer validates tokenString and returns the verified player id.
func (v *Verifier) VerifyPlayer(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, v.jwks.Keyfunc,
		jwt.WithIssuer(v.issuer),
		jwt.WithValidMethods([]string{"EdDSA", "RS256"}))
	if err != nil {
		return "", matcherrors.New(matcherrors.KindUnauthenticated, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", matcherrors.New(matcherrors.KindUnauthenticated, nil)
	}

	playerID := playerIDFromClaims(claims)
	if playerID == "" {
		return "", matcherrors.New(matcherrors.KindUnauthenticated, fmt.Errorf("token has no usable subject"))
	}
	return playerID, nil
}

func playerIDFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok && id != "" {
		return id
	}
	return ""
}
