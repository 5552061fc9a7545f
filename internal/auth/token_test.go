package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour, nil)

	token, err := codec.Issue("usr12345")
	require.NoError(t, err)

	userID, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "usr12345", userID)

	// Resolving the same token again yields the same user.
	again, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, userID, again)
}

func TestTokenCodec_ExpiredToken(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour, func() time.Time { return clock })

	token, err := codec.Issue("usr12345")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)

	for i := 0; i < 3; i++ {
		_, err = codec.Verify(token)
		require.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestTokenCodec_ForgedToken(t *testing.T) {
	codec := NewTokenCodec(testSecret, time.Hour, nil)
	other := NewTokenCodec([]byte("other-secret"), time.Hour, nil)

	token, err := other.Issue("usr12345")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = codec.Verify("not.a.token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFromHeader(t *testing.T) {
	token, err := FromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = FromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "abc.def.ghi"} {
		_, err = FromHeader(header)
		require.ErrorIs(t, err, ErrUnauthorized, "header %q", header)
	}
}
