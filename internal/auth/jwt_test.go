package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys() Keys {
	return Keys{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	keys := testKeys()

	token, err := keys.GenerateAccessToken("42")
	require.NoError(t, err)

	subject, err := keys.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	keys := testKeys()

	token, err := keys.GenerateRefreshToken("42")
	require.NoError(t, err)

	subject, err := keys.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestSellerTokenValidatesAsAccess(t *testing.T) {
	keys := testKeys()

	token, err := keys.GenerateSellerToken("seller_admin@greencart.dev")
	require.NoError(t, err)

	subject, err := keys.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "seller_admin@greencart.dev", subject)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	keys := testKeys()

	a, err := keys.GenerateRefreshToken("42")
	require.NoError(t, err)
	b, err := keys.GenerateRefreshToken("42")
	require.NoError(t, err)

	// The jti claim makes every issued token distinct.
	assert.NotEqual(t, a, b)
}

func TestValidateRejectsCrossUse(t *testing.T) {
	keys := testKeys()

	access, err := keys.GenerateAccessToken("42")
	require.NoError(t, err)
	refresh, err := keys.GenerateRefreshToken("42")
	require.NoError(t, err)

	// Different signing secrets, so cross-validation fails before the type
	// claim is even looked at.
	_, err = keys.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = keys.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongTypeUnderSharedSecret(t *testing.T) {
	// With identical secrets the signature checks out, so only the type claim
	// stands between a refresh token and an access-protected route.
	shared := Keys{
		AccessSecret:  []byte("shared-secret"),
		RefreshSecret: []byte("shared-secret"),
	}

	refresh, err := shared.GenerateRefreshToken("42")
	require.NoError(t, err)

	_, err = shared.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestValidateRejectsGarbage(t *testing.T) {
	keys := testKeys()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "not a jwt", token: "definitely-not-a-jwt"},
		{name: "tampered payload", token: func() string {
			token, err := keys.GenerateAccessToken("42")
			require.NoError(t, err)
			return token + "x"
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keys.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	keys := testKeys()
	other := Keys{
		AccessSecret:  []byte("somebody-else"),
		RefreshSecret: []byte("somebody-else"),
	}

	token, err := other.GenerateAccessToken("42")
	require.NoError(t, err)

	_, err = keys.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
