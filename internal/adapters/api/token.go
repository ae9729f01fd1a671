package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/andrescamacho/warera-economy-go/internal/application/auth"
)

// TokenOwner identifies the account behind the session token
type TokenOwner struct {
	token string
}

// NewTokenOwner creates a TokenOwner; token is used when the context carries no session
func NewTokenOwner(token string) *TokenOwner {
	return &TokenOwner{token: token}
}

// OwnerID decodes the owner of the context session token, or of the configured one
func (o *TokenOwner) OwnerID(ctx context.Context) (string, error) {
	token := o.token
	if session, ok := auth.SessionFromContext(ctx); ok {
		token = session.Token
	}
	return DecodeOwnerID(token)
}

// DecodeOwnerID returns data._id, falling back to _id. The signature is not verified.
func DecodeOwnerID(token string) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}

	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("could not decode token: not a JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", fmt.Errorf("could not decode token: %w", err)
	}
	if !gjson.ValidBytes(payload) {
		return "", fmt.Errorf("could not decode token: payload is not JSON")
	}

	claims := gjson.ParseBytes(payload)
	for _, path := range []string{"data._id", "_id"} {
		if id := claims.Get(path).String(); id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("could not decode token: no user id claim")
}
