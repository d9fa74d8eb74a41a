package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/xyz-asif/promptshare/internal/config"
)

var ErrInvalidIDToken = errors.New("invalid identity token")

// TokenVerifier turns an identity-provider ID token into a verified Profile
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}

// NewVerifier builds the verifier selected by cfg.AuthProvider
func NewVerifier(ctx context.Context, cfg *config.Config) (TokenVerifier, error) {
	switch cfg.AuthProvider {
	case config.ProviderGoogle:
		if cfg.GoogleClientID == "" {
			return nil, errors.New("GOOGLE_CLIENT_ID is required for the google auth provider")
		}
		return NewGoogleVerifier(cfg.GoogleClientID), nil
	case config.ProviderFirebase:
		return NewFirebaseVerifier(ctx, cfg.FirebaseServiceAccountPath)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}

// GoogleVerifier validates Google ID tokens against the OAuth client id
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Profile, error) {
	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	return profileFromClaims(payload.Subject, payload.Claims), nil
}

type firebaseTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier validates Firebase Auth ID tokens (Google sign-in through Firebase)
type FirebaseVerifier struct {
	client firebaseTokenClient
}

// InitFirebase initializes the Firebase Admin SDK and returns the Auth client
func InitFirebase(ctx context.Context, serviceAccountPath string) (*firebaseauth.Client, error) {
	var opts []option.ClientOption
	if serviceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	return client, nil
}

func NewFirebaseVerifier(ctx context.Context, serviceAccountPath string) (*FirebaseVerifier, error) {
	client, err := InitFirebase(ctx, serviceAccountPath)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Profile, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	return profileFromClaims(token.UID, token.Claims), nil
}

func profileFromClaims(subject string, claims map[string]interface{}) *Profile {
	profile := &Profile{Subject: subject}

	if email, ok := claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		profile.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		profile.Picture = picture
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		profile.EmailVerified = verified
	}

	return profile
}
