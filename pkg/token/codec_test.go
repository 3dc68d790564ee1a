package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCodec(t *testing.T, clock *fakeClock, opts ...Option) *Codec {
	t.Helper()
	opts = append(opts, WithClock(clock.Now))
	c, err := NewCodec("unit-test-secret", opts...)
	require.NoError(t, err)
	return c
}

func TestNewCodecEmptySecret(t *testing.T) {
	_, err := NewCodec("")
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	c := newTestCodec(t, clock, WithIssuer("chat-room"))

	tk, err := c.Issue(42, "alice", DefaultTTL)
	require.NoError(t, err)

	t.Run("before_expiry", func(t *testing.T) {
		identity, err := c.Verify(tk)
		require.NoError(t, err)
		assert.Equal(t, int64(42), identity.AccountID)
		assert.Equal(t, "alice", identity.Username)
		assert.Equal(t, clock.now.Add(DefaultTTL), identity.ExpiresAt.UTC())
		assert.Equal(t, clock.now, identity.IssuedAt.UTC())
		assert.Equal(t, DefaultTTL, identity.Remaining(clock.now))
	})

	t.Run("after_expiry", func(t *testing.T) {
		later := &fakeClock{now: clock.now.Add(DefaultTTL + time.Second)}
		expiredView := newTestCodec(t, later, WithIssuer("chat-room"))
		_, err := expiredView.Verify(tk)
		require.ErrorIs(t, err, ErrCredentialExpired)
	})
}

func TestIssueDefaultsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	tk, err := c.Issue(1, "bob", 0)
	require.NoError(t, err)

	identity, err := c.Verify(tk)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, identity.Remaining(clock.now))
}

func TestVerifyInvalid(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, clock)

	valid, err := c.Issue(7, "carol", time.Hour)
	require.NoError(t, err)

	other, err := NewCodec("another-secret", WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue(7, "carol", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:   7,
		Username: "carol",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 7}).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong_secret", token: foreign},
		{name: "tampered_payload", token: tampered},
		{name: "alg_none", token: unsigned},
		{name: "missing_expiry", token: noExpiry},
		{name: "missing_account", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestVerifyExpiredWrongSecretIsInvalid(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	other, err := NewCodec("another-secret", WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue(7, "carol", time.Minute)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	c := newTestCodec(t, clock)
	_, err = c.Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	issuerA := newTestCodec(t, clock, WithIssuer("a"))
	issuerB := newTestCodec(t, clock, WithIssuer("b"))

	tk, err := issuerA.Issue(3, "dave", time.Hour)
	require.NoError(t, err)

	_, err = issuerB.Verify(tk)
	require.ErrorIs(t, err, ErrInvalidCredential)
}
