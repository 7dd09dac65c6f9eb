// Package firebase validates Firebase ID tokens issued to the frontend by
// Firebase Authentication, so the backend can exchange them for its own
// session tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

var (
	// ErrTokenExpired indicates the ID token was valid once but has expired.
	ErrTokenExpired = errors.New("firebase: token expired")
	// ErrTokenInvalid indicates the ID token failed validation for any other reason.
	ErrTokenInvalid = errors.New("firebase: token invalid")
)

// Profile is the identity extracted from a verified Firebase ID token.
type Profile struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier validates a Firebase ID token and returns the caller's profile.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}

// idTokenVerifier is the slice of the Admin SDK auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// GoogleVerifier validates tokens through the Firebase Admin SDK, which
// fetches the securetoken signing certs and checks signature, audience,
// and the project's securetoken issuer.
type GoogleVerifier struct {
	client idTokenVerifier
}

// NewGoogleVerifier creates a verifier bound to the given Firebase project.
// Token verification only needs the project's public signing certs, so no
// service account credentials are required.
func NewGoogleVerifier(ctx context.Context, projectID string) (*GoogleVerifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firebase: project ID must not be empty")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: init auth client: %w", err)
	}

	return &GoogleVerifier{client: client}, nil
}

// Verify checks the token and extracts the profile claims. Expired tokens
// are reported distinctly so clients can prompt re-authentication.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		if auth.IsIDTokenExpired(err) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if decoded.UID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &Profile{
		UID:     decoded.UID,
		Email:   claimString(decoded.Claims, "email"),
		Name:    claimString(decoded.Claims, "name"),
		Picture: claimString(decoded.Claims, "picture"),
	}, nil
}

// Disabled rejects every token. Used when no Firebase project is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (*Profile, error) {
	return nil, fmt.Errorf("%w: firebase verification is not configured", ErrTokenInvalid)
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
