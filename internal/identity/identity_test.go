package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/models"
)

func signedToken(t *testing.T, sub string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: sub})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestFromToken(t *testing.T) {
	token := signedToken(t, "owner-42")

	id, err := FromToken("  " + token + " ")
	require.NoError(t, err)
	assert.Equal(t, "owner-42", id.OwnerID)
	assert.Equal(t, token, id.Token)
}

func TestFromToken_BearerScheme(t *testing.T) {
	token := signedToken(t, "owner-42")

	id, err := FromToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "owner-42", id.OwnerID)
	assert.Equal(t, token, id.Token)
}

func TestFromToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong scheme", token: "Basic dXNlcjpwdw=="},
		{name: "no subject", token: signedToken(t, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBroker_LoginLogout(t *testing.T) {
	b := NewBroker()
	var got []*models.Identity
	b.OnIdentityChange(func(id *models.Identity) { got = append(got, id) })

	id, err := b.Login(signedToken(t, "owner"))
	require.NoError(t, err)
	assert.Equal(t, id, b.Current())

	b.Logout()
	assert.Nil(t, b.Current())

	// already logged out
	b.Logout()

	require.Len(t, got, 2)
	assert.Equal(t, "owner", got[0].OwnerID)
	assert.Nil(t, got[1])
}

func TestBroker_FailedLoginPublishesNothing(t *testing.T) {
	b := NewBroker()
	calls := 0
	b.OnIdentityChange(func(*models.Identity) { calls++ })

	_, err := b.Login("broken")
	assert.Error(t, err)
	assert.Zero(t, calls)
	assert.Nil(t, b.Current())
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	var order []string

	unsubA := b.OnIdentityChange(func(*models.Identity) { order = append(order, "a") })
	b.OnIdentityChange(func(*models.Identity) { order = append(order, "b") })

	_, err := b.Login(signedToken(t, "owner"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	unsubA()
	unsubA()

	b.Logout()
	assert.Equal(t, []string{"a", "b", "b"}, order)
}
