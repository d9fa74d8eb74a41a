package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xyz-asif/promptshare/internal/pkg/logger"
	"github.com/xyz-asif/promptshare/internal/pkg/metrics"
	"github.com/xyz-asif/promptshare/internal/pkg/username"
	apperrors "github.com/xyz-asif/promptshare/pkg/errors"
)

const defaultProvisionAttempts = 3

var (
	ErrEmailRequired   = fmt.Errorf("%w: identity has no email", apperrors.ErrValidation)
	ErrUsernameTaken   = fmt.Errorf("username %w", apperrors.ErrDuplicate)
	ErrEmailTaken      = fmt.Errorf("email %w", apperrors.ErrDuplicate)
	ErrUserNotFound    = fmt.Errorf("user %w", apperrors.ErrNotFound)
	ErrInvalidUserID   = fmt.Errorf("%w: invalid user id format", apperrors.ErrValidation)
	ErrProvisionFailed = errors.New("user provisioning failed")
)

// UserStore is the persistence the sign-in flow needs. UsernameExists doubles
// as the uniqueness oracle for username generation.
type UserStore interface {
	username.Oracle
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// AvatarMirror copies a provider profile picture to media storage
type AvatarMirror interface {
	MirrorAvatar(ctx context.Context, sourceURL, publicID string) (string, error)
}

type Service struct {
	store             UserStore
	generator         *username.Generator
	metrics           *metrics.Metrics
	avatars           AvatarMirror
	log               *logger.Logger
	provisionAttempts int
}

type ServiceOption func(*Service)

// WithAvatarMirror enables copying provider pictures on first sign-in
func WithAvatarMirror(m AvatarMirror) ServiceOption {
	return func(s *Service) {
		s.avatars = m
	}
}

// WithProvisionAttempts bounds how often a rejected duplicate username reruns generation
func WithProvisionAttempts(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.provisionAttempts = n
		}
	}
}

func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

func NewService(store UserStore, generator *username.Generator, m *metrics.Metrics, opts ...ServiceOption) *Service {
	if generator == nil {
		generator = username.NewGenerator()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Service{
		store:             store,
		generator:         generator,
		metrics:           m,
		log:               logger.Default(),
		provisionAttempts: defaultProvisionAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn returns the user owning profile's email, provisioning one with a
// generated username on first sign-in. created reports whether the user was
// provisioned by this call. Any error means the sign-in must be denied.
func (s *Service) SignIn(ctx context.Context, profile *Profile) (user *User, created bool, err error) {
	defer func() {
		switch {
		case err != nil:
			s.metrics.SignIns.WithLabelValues(metrics.ResultDenied).Inc()
		case created:
			s.metrics.SignIns.WithLabelValues(metrics.ResultProvisioned).Inc()
		default:
			s.metrics.SignIns.WithLabelValues(metrics.ResultExisting).Inc()
		}
	}()

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, false, ErrEmailRequired
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("look up user by email: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user, err = s.provision(ctx, email, profile)
	if errors.Is(err, ErrEmailTaken) {
		// A concurrent first sign-in for the same email won the insert.
		existing, lookupErr := s.store.GetUserByEmail(ctx, email)
		if lookupErr == nil && existing != nil {
			return existing, false, nil
		}
	}
	if err != nil {
		return nil, false, err
	}

	s.log.Info("Provisioned user %s with username %s", user.ID.Hex(), user.Username)
	return user, true, nil
}

func (s *Service) provision(ctx context.Context, email string, profile *Profile) (*User, error) {
	oracle := username.OracleFunc(func(ctx context.Context, candidate string) (bool, error) {
		taken, err := s.store.UsernameExists(ctx, candidate)
		if taken {
			s.metrics.UsernameCollisions.Inc()
		}
		return taken, err
	})

	image := s.mirrorAvatar(ctx, profile)

	for attempt := 1; attempt <= s.provisionAttempts; attempt++ {
		name, err := s.generator.Generate(ctx, profile.Name, oracle)
		if err != nil {
			return nil, fmt.Errorf("generate username: %w", err)
		}

		user := &User{
			GoogleID:    profile.Subject,
			Email:       email,
			Username:    name,
			DisplayName: profile.Name,
			Image:       image,
		}
		err = s.store.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return nil, fmt.Errorf("create user: %w", err)
		}

		s.metrics.ProvisionRetries.Inc()
		s.log.Warn("Username %s was taken before insert (attempt %d/%d)", name, attempt, s.provisionAttempts)
	}

	return nil, fmt.Errorf("%w: username still taken after %d attempts", ErrProvisionFailed, s.provisionAttempts)
}

// mirrorAvatar returns the picture URL to store. Mirroring failures keep the
// provider URL.
func (s *Service) mirrorAvatar(ctx context.Context, profile *Profile) string {
	if s.avatars == nil || profile.Picture == "" || profile.Subject == "" {
		return profile.Picture
	}

	mirrored, err := s.avatars.MirrorAvatar(ctx, profile.Picture, profile.Subject)
	if err != nil {
		s.metrics.AvatarMirrorErrors.Inc()
		s.log.Warn("Keeping provider avatar for %s: %v", profile.Subject, err)
		return profile.Picture
	}
	return mirrored
}

// CurrentUser resolves a session subject to the stored user
func (s *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// PublicProfile looks up a user by username
func (s *Service) PublicProfile(ctx context.Context, name string) (*User, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if err := ValidateUsername(name); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
