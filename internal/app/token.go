package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ErrInvalidToken is returned when a seat token is missing, expired, or issued for another seat.
var ErrInvalidToken = errors.New("invalid seat token")

// TokenIssuer signs seat tokens binding a participant to a session.
type TokenIssuer struct {
	secret string
	ttl    time.Duration
	now    func() time.Time
}

const (
	claimSession     = "ses"
	claimParticipant = "sub"
)

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Enabled reports whether tokens are issued and checked.
func (s *TokenIssuer) Enabled() bool {
	return s != nil && s.secret != ""
}

// Issue returns an HS256 token for participantID in sessionCode, or "" when disabled.
func (s *TokenIssuer) Issue(sessionCode, participantID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	if sessionCode == "" || participantID == "" {
		return "", fmt.Errorf("session and participant are required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		claimParticipant: participantID,
		claimSession:     sessionCode,
		"iat":            now.Unix(),
		"exp":            now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks that tokenString was issued for this seat. It accepts anything when disabled.
func (s *TokenIssuer) Verify(tokenString, sessionCode, participantID string) error {
	if !s.Enabled() {
		return nil
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if claims[claimSession] != sessionCode || claims[claimParticipant] != participantID {
		return fmt.Errorf("%w: issued for another seat", ErrInvalidToken)
	}
	return nil
}
