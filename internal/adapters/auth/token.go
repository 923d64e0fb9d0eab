package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blueelephant/internal/domain"
)

// DefaultStateTTL bounds how long a sign-in may take at the provider.
const DefaultStateTTL = 10 * time.Minute

const stateIssuer = "blueelephant"

type stateClaims struct {
	jwt.RegisteredClaims
	SID string `json:"sid"`
}

type jwtStateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner returns a StateSigner that signs HS256 JWTs with the given secret.
func NewStateSigner(secret string, ttl time.Duration) domain.StateSigner {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &jwtStateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *jwtStateSigner) Sign(sid string) (string, error) {
	now := s.now()
	claims := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SID: sid,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and issuer of state and that it was
// issued for sid.
func (s *jwtStateSigner) Verify(state, sid string) error {
	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(state, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidSession, err)
	}
	if claims.SID != sid {
		return fmt.Errorf("%w: state issued for another session", domain.ErrInvalidSession)
	}
	return nil
}

// IsExpired reports whether err came from an expired state token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
