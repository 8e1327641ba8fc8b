package session

import (
	"errors"
	"fmt"

	"bookworm/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// decodeCredential reads the subject and expiry out of a bearer token.
// The token is not verified here: signature checks belong to the backend,
// the client only needs the claims to schedule renewal and derive identity.
func decodeCredential(accessToken string) (domain.Credential, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return domain.Credential{}, fmt.Errorf("parse token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Credential{}, errors.New("token has no subject")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return domain.Credential{}, errors.New("token has no expiry")
	}

	return domain.Credential{
		AccessToken: accessToken,
		Subject:     sub,
		ExpiresAt:   exp.Time,
	}, nil
}
