package firebase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	uid          string
	err          error
	plainCalls   int
	revokedCalls int
}

func (s *stubClient) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	s.plainCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{UID: s.uid}, nil
}

func (s *stubClient) VerifyIDTokenAndCheckRevoked(context.Context, string) (*auth.Token, error) {
	s.revokedCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{UID: s.uid}, nil
}

func TestVerifier(t *testing.T) {
	t.Parallel()

	t.Run("plain verification", func(t *testing.T) {
		client := &stubClient{uid: "u1"}
		token, err := NewVerifier(client, false).VerifyIDToken(t.Context(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", token.UID)
		assert.Equal(t, 1, client.plainCalls)
		assert.Zero(t, client.revokedCalls)
	})

	t.Run("revocation check", func(t *testing.T) {
		client := &stubClient{uid: "u1"}
		_, err := NewVerifier(client, true).VerifyIDToken(t.Context(), "tok")
		require.NoError(t, err)
		assert.Zero(t, client.plainCalls)
		assert.Equal(t, 1, client.revokedCalls)
	})

	t.Run("rejected token", func(t *testing.T) {
		rejected := errors.New("id token has been revoked")
		_, err := NewVerifier(&stubClient{err: rejected}, true).VerifyIDToken(t.Context(), "tok")
		assert.ErrorIs(t, err, rejected)
	})

	t.Run("token without uid", func(t *testing.T) {
		_, err := NewVerifier(&stubClient{}, false).VerifyIDToken(t.Context(), "tok")
		assert.ErrorIs(t, err, ErrMissingUID)
	})
}

func TestInitVerifierNeedsCredentials(t *testing.T) {
	t.Parallel()

	_, err := InitVerifier(t.Context(), "", false)
	assert.Error(t, err)

	_, err = InitVerifier(t.Context(), filepath.Join(t.TempDir(), "missing.json"), false)
	assert.ErrorContains(t, err, "not readable")
}
