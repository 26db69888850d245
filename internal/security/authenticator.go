package security

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

type PrincipalKind int

const (
	PrincipalAnonymous PrincipalKind = iota
	PrincipalIdentified
	PrincipalInvalid
)

func (k PrincipalKind) String() string {
	switch k {
	case PrincipalAnonymous:
		return "anonymous"
	case PrincipalIdentified:
		return "identified"
	case PrincipalInvalid:
		return "invalid"
	}
	return fmt.Sprintf("PrincipalKind(%d)", int(k))
}

// Principal is who a request is attributed to. UserID is only meaningful for
// PrincipalIdentified.
type Principal struct {
	Kind   PrincipalKind
	UserID int64
}

func Anonymous() Principal { return Principal{Kind: PrincipalAnonymous} }

func Identified(userID int64) Principal {
	return Principal{Kind: PrincipalIdentified, UserID: userID}
}

func (p Principal) IsIdentified() bool { return p.Kind == PrincipalIdentified }

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

// Authenticate turns a raw bearer credential into a principal. An empty token
// is anonymous; anything unparseable, expired, or not an access token yields
// ErrInvalidToken together with a PrincipalInvalid value.
func (a *Authenticator) Authenticate(token string, now time.Time) (Principal, error) {
	if token == "" {
		return Anonymous(), nil
	}

	claims, err := ParseAccessToken(token, a.secret, now)
	if err != nil {
		return Principal{Kind: PrincipalInvalid}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != TokenTypeAccess || claims.UserID <= 0 {
		return Principal{Kind: PrincipalInvalid}, ErrInvalidToken
	}

	return Identified(claims.UserID), nil
}
