package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func (v *Verifier) issueExpired() (string, error) {
	past := time.Now().Add(-time.Hour)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		IssuedAt:  jwt.NewNumericDate(past.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(past),
		Issuer:    Issuer,
	}}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
