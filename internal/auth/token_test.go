package auth

import (
	"context"
	"testing"
	"time"

	"decor-store/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("0123456789abcdef-session")
	sessionID := uuid.New()

	token, err := signer.Sign(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	got, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestSigner_Rejects(t *testing.T) {
	signer := NewSigner("0123456789abcdef-session")
	sessionID := uuid.New()

	valid, err := signer.Sign(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	expired, err := signer.Sign(sessionID, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	otherKey, err := NewSigner("another-secret-of-enough-length").Sign(sessionID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: sessionID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("0123456789abcdef-session"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: sessionID.String()}).
		SignedString([]byte("0123456789abcdef-session"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not.a.token"},
		{name: "Tampered", token: valid[:len(valid)-2] + "xx"},
		{name: "Expired", token: expired},
		{name: "Wrong key", token: otherKey},
		{name: "Unsigned", token: noneAlg},
		{name: "Bad session id", token: badID},
		{name: "Missing expiry", token: noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := signer.Parse(tt.token)

			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, uuid.Nil, id)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, PrincipalFrom(ctx))

	p := &model.Principal{UserID: "user-1", Username: "rina"}
	assert.Same(t, p, PrincipalFrom(WithPrincipal(ctx, p)))
}
