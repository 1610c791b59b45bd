package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Email-verification links carry a short-lived signed token instead of a DB
// row; verifying one is a pure signature + purpose check.

type VerificationClaims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type VerificationManager struct {
	secret []byte
	ttl    time.Duration
}

func NewVerificationManager(secret string, ttl time.Duration) *VerificationManager {
	return &VerificationManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *VerificationManager) Generate(userID, email string) (string, error) {
	now := time.Now().UTC()

	claims := VerificationClaims{
		UserID:  userID,
		Email:   email,
		Purpose: "email_verification",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *VerificationManager) Verify(tokenStr string) (*VerificationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &VerificationClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*VerificationClaims)

	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Purpose != "email_verification" {
		return nil, errors.New("invalid token purpose")
	}

	return claims, nil
}
