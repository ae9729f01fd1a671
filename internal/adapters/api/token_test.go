package api

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/application/auth"
)

func jwtWithPayload(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".signature"
}

func TestDecodeOwnerID(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr string
	}{
		{name: "nested data id", token: jwtWithPayload(`{"data":{"_id":"u-1"},"_id":"outer"}`), want: "u-1"},
		{name: "top-level id", token: jwtWithPayload(`{"_id":"u-2"}`), want: "u-2"},
		{name: "padded payload", token: "h." + base64.URLEncoding.EncodeToString([]byte(`{"_id":"u-3x"}`)) + ".s", want: "u-3x"},
		{name: "not a jwt", token: "opaque", wantErr: "not a JWT"},
		{name: "payload not json", token: jwtWithPayload("hello"), wantErr: "not JSON"},
		{name: "no id claim", token: jwtWithPayload(`{"sub":"x"}`), wantErr: "no user id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := DecodeOwnerID(tt.token)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "could not decode token")
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestTokenOwner_PrefersContextSession(t *testing.T) {
	owner := NewTokenOwner(jwtWithPayload(`{"_id":"configured"}`))

	id, err := owner.OwnerID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "configured", id)

	ctx := auth.WithSession(context.Background(), auth.Session{Token: jwtWithPayload(`{"_id":"request"}`)})
	id, err = owner.OwnerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "request", id)
}

func TestTokenOwner_EmptyToken(t *testing.T) {
	_, err := NewTokenOwner("").OwnerID(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)
}
