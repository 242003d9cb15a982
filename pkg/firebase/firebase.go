package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrMissingUID is returned for a verified token that names no user
var ErrMissingUID = errors.New("firebase token has no uid")

// authClient is the part of *auth.Client the verifier needs
type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier turns Firebase ID tokens into user ids for the identity
// middleware. With checkRevoked set every call also asks Firebase whether
// the token's session was revoked.
type Verifier struct {
	client       authClient
	checkRevoked bool
}

// NewVerifier wraps an auth client
func NewVerifier(client authClient, checkRevoked bool) *Verifier {
	return &Verifier{client: client, checkRevoked: checkRevoked}
}

// VerifyIDToken checks the token signature, expiry and, if enabled,
// revocation
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	var (
		token *auth.Token
		err   error
	)
	if v.checkRevoked {
		token, err = v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	} else {
		token, err = v.client.VerifyIDToken(ctx, idToken)
	}
	if err != nil {
		return nil, err
	}
	if token.UID == "" {
		return nil, ErrMissingUID
	}
	return token, nil
}

// InitVerifier initializes the Firebase application from a service account
// file and returns a verifier on its auth client
func InitVerifier(ctx context.Context, credentialsPath string, checkRevoked bool) (*Verifier, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file not readable at %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	return NewVerifier(client, checkRevoked), nil
}
