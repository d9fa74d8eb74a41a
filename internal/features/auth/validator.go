package auth

import (
	"fmt"
	"regexp"

	"github.com/xyz-asif/promptshare/internal/pkg/username"
	apperrors "github.com/xyz-asif/promptshare/pkg/errors"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9]+$`)

	ErrInvalidUsername = fmt.Errorf("%w: username must be %d-%d lowercase letters or digits",
		apperrors.ErrValidation, username.MinLength, username.MaxLength)
)

// ValidateUsername checks the format every generated username satisfies
func ValidateUsername(name string) error {
	if len(name) < username.MinLength || len(name) > username.MaxLength {
		return ErrInvalidUsername
	}

	if !usernameRegex.MatchString(name) {
		return ErrInvalidUsername
	}

	return nil
}
