package auth

import (
	"context"
	"fmt"

	"bacheliers/config"

	fbauth "firebase.google.com/go/v4/auth"
)

// Principal is the authenticated caller. Identity is the registration document key.
type Principal struct {
	Identity string
	Email    string
}

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// JWTVerifier accepts tokens signed with the configured HS256 secret.
type JWTVerifier struct {
	cfg *config.JWTConfig
}

func NewJWTVerifier(cfg *config.JWTConfig) *JWTVerifier {
	return &JWTVerifier{cfg: cfg}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := ParseAccessToken(v.cfg, token)
	if err != nil {
		return nil, err
	}
	return &Principal{Identity: claims.Subject, Email: claims.Email}, nil
}

// FirebaseVerifier checks Firebase ID tokens issued to the front end.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := t.Claims["email"].(string)
	return &Principal{Identity: t.UID, Email: email}, nil
}
