package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/application/auth"
	"github.com/andrescamacho/warera-economy-go/internal/application/mediator"
)

type tokenRequest struct {
	Token       string
	Fingerprint string
}

type plainRequest struct{ Username string }

func captureSession(t *testing.T, mw mediator.Middleware, request mediator.Request) (auth.Session, bool) {
	t.Helper()
	var got auth.Session
	var found bool
	_, err := mw(context.Background(), request, func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		got, found = auth.SessionFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	return got, found
}

func TestSessionMiddleware_UsesFallback(t *testing.T) {
	mw := auth.SessionMiddleware(auth.Session{Token: "cfg-token", Fingerprint: "cfg-fp"})

	session, found := captureSession(t, mw, &plainRequest{Username: "alice"})

	assert.True(t, found)
	assert.Equal(t, "cfg-token", session.Token)
	assert.Equal(t, "cfg-fp", session.Fingerprint)
}

func TestSessionMiddleware_RequestTokenOverrides(t *testing.T) {
	mw := auth.SessionMiddleware(auth.Session{Token: "cfg-token", Fingerprint: "cfg-fp"})

	session, found := captureSession(t, mw, &tokenRequest{Token: "req-token"})

	assert.True(t, found)
	assert.Equal(t, "req-token", session.Token)
	assert.Equal(t, "cfg-fp", session.Fingerprint)
}

func TestSessionMiddleware_NoCredentials(t *testing.T) {
	mw := auth.SessionMiddleware(auth.Session{})

	_, found := captureSession(t, mw, &plainRequest{})

	assert.False(t, found)
}

func TestSessionFromContext_Empty(t *testing.T) {
	_, found := auth.SessionFromContext(context.Background())

	assert.False(t, found)
}
