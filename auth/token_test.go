package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blog-platform-backend/models"
)

func newTestTokenService(t *testing.T, secret string) *TokenService {
	t.Helper()
	s, err := NewTokenService([]byte(secret), time.Hour)
	require.NoError(t, err)
	return s
}

func aliceIdentity() Identity {
	return Identity{
		UserID:   uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e"),
		Username: "alice",
		Email:    "alice@x.com",
		Role:     models.RoleUser,
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(nil, time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewTokenService([]byte("k"), 0)
	assert.Error(t, err)
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "super-secret")
	id := aliceIdentity()

	tok, err := s.Issue(id, 3)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, id, claims.Identity)
	assert.Equal(t, 3, claims.Epoch)
	assert.Equal(t, id.UserID.String(), claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokenService(t, "right-secret").Issue(aliceIdentity(), 0)
	require.NoError(t, err)

	_, err = newTestTokenService(t, "wrong-secret").Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := s.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidSignature, "token %q", tok)
	}
}

func TestVerify_ForgedPayload(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	tok, err := s.Issue(aliceIdentity(), 0)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	raw["role"] = string(models.RoleAdmin)
	forged, err := json.Marshal(raw)
	require.NoError(t, err)

	parts[1] = base64.RawURLEncoding.EncodeToString(forged)
	_, err = s.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := s.Issue(aliceIdentity(), 0)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	claims := Claims{
		Identity: aliceIdentity(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Identity: aliceIdentity()}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_RejectsUnknownRole(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	for _, role := range []models.Role{"superuser", ""} {
		identity := aliceIdentity()
		identity.Role = role

		tok, err := s.Issue(identity, 0)
		require.NoError(t, err)

		_, err = s.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidSignature, "role %q", role)
	}
}

func TestIssue_SnapshotIsFrozen(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k")
	user := &models.User{ID: uuid.New(), Username: "bob", Email: "bob@x.com", Role: models.RoleUser}

	tok, err := s.Issue(IdentityOf(user), user.TokenEpoch)
	require.NoError(t, err)

	user.Role = models.RoleAdmin

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}
