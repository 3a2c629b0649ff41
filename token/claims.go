package token

import (
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == Access || k == Refresh
}

func (k Kind) String() string { return string(k) }

// Claims is the JWT payload: registered claims plus the token kind.
type Claims struct {
	gojwt.RegisteredClaims
	Type Kind `json:"type"`
}

// Decoded is the verified content of a token.
type Decoded struct {
	SubjectID int64
	Kind      Kind
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Pair is the wire contract returned by login, register and refresh.
// RefreshToken is empty after a refresh without rotation.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

func formatSubject(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseSubject(sub string) (int64, error) {
	if sub == "" {
		return 0, fmt.Errorf("missing subject")
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject %q is not numeric", sub)
	}
	return id, nil
}
