package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = time.Hour

var (
	errTokenMissing = errors.New("token missing")
	errTokenClaims  = errors.New("token has no account id")
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenService mints and validates bearer tokens. It holds no state beyond
// its signing secret, so validation needs no store access.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenService) Generate(accountID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: accountID,
	})

	return token.SignedString(s.secret)
}

// Validate returns the account id encoded in tokenString. Every failure is
// an ErrAuth error.
func (s *TokenService) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", &Error{Kind: ErrAuth, Message: "Authentication failed. Token missing.", Err: errTokenMissing}
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", &Error{Kind: ErrAuth, Message: "Authentication failed. Invalid token.", Err: err}
	}
	if claims.UserID == "" {
		return "", &Error{Kind: ErrAuth, Message: "Authentication failed. Invalid token.", Err: errTokenClaims}
	}

	return claims.UserID, nil
}
