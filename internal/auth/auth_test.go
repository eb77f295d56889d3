package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pebbles/assets"
	"github.com/robalobadob/pebbles/internal/database"
)

func newUsers(t *testing.T) *Users {
	t.Helper()
	db, err := database.Open(database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))
	return NewUsers(db)
}

func TestUsers_CreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)

	u, err := users.Create(ctx, "  pebble_fan ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "pebble_fan", u.Username)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	got, err := users.Authenticate(ctx, "PEBBLE_FAN", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, byID.Username)
	assert.Equal(t, u.CreatedAt, byID.CreatedAt)
}

func TestUsers_Errors(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t)
	_, err := users.Create(ctx, "taken", "password1")
	require.NoError(t, err)

	_, err = users.Create(ctx, "TAKEN", "password2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = users.Authenticate(ctx, "taken", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(ctx, "ghost", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.FindByID(ctx, "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "ok", username: "alice_1", password: "long enough"},
		{name: "short username", username: "al", password: "long enough", wantErr: true},
		{name: "bad characters", username: "al ice", password: "long enough", wantErr: true},
		{name: "short password", username: "alice", password: "short", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSignup(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignup)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	u := &User{ID: "u1", Username: "alice"}

	tok, exp, err := tokens.Sign(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokens_Rejects(t *testing.T) {
	u := &User{ID: "u1", Username: "alice"}

	other, _, err := NewTokens("other-secret", time.Hour).Sign(u)
	require.NoError(t, err)

	expiredIssuer := NewTokens("secret", time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.Sign(u)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1", Username: "alice"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tokens := NewTokens("secret", time.Hour)
	for name, tok := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(tok)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
