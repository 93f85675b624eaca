package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const confirmationPurpose = "email_confirmation"

// ConfirmationTTL bounds how long an emailed confirmation link stays valid
const ConfirmationTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid confirmation token")

type confirmationClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// ConfirmationTokens signs HS256 tokens binding a user id to the email confirmation purpose
type ConfirmationTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewConfirmationTokens(secret string) *ConfirmationTokens {
	return &ConfirmationTokens{secret: []byte(secret), ttl: ConfirmationTTL, now: time.Now}
}

func (t *ConfirmationTokens) Issue(uid string) (string, error) {
	now := t.now()
	claims := confirmationClaims{
		Purpose: confirmationPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks signature, expiry and purpose and returns the subject uid
func (t *ConfirmationTokens) Verify(token string) (string, error) {
	var claims confirmationClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != confirmationPurpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
