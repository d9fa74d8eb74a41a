// Package username derives unique account handles from display names.
//
// A display name goes through four stages: known diacritics are transliterated
// to their ASCII base letter, everything outside [A-Za-z0-9] is stripped and
// the rest lower-cased, the result is clamped to [MinLength, MaxLength] with
// random base-36 padding, and finally a decimal counter is appended until the
// uniqueness oracle reports the candidate as free.
package username

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 8
	MaxLength = 20

	// DefaultMaxAttempts bounds the number of oracle checks for one base.
	DefaultMaxAttempts = 1000

	truncateLength = 16
	tagLength      = 4
	alphabet       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrOracleUnavailable wraps any failure of the uniqueness check.
	ErrOracleUnavailable = errors.New("username oracle unavailable")
	// ErrUsernameExhausted is returned when every candidate within the attempt budget is taken.
	ErrUsernameExhausted = errors.New("could not allocate username")

	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

	transliterations = map[rune]rune{
		'č': 'c', 'Č': 'C',
		'š': 's', 'Š': 'S',
		'ž': 'z', 'Ž': 'Z',
		'ć': 'c', 'Ć': 'C',
		'đ': 'd', 'Đ': 'D',
		'ü': 'u', 'Ü': 'U',
		'ö': 'o', 'Ö': 'O',
		'ä': 'a', 'Ä': 'A',
		'á': 'a', 'Á': 'A',
		'é': 'e', 'É': 'E',
		'í': 'i', 'Í': 'I',
		'ó': 'o', 'Ó': 'O',
		'ú': 'u', 'Ú': 'U',
	}
)

// Oracle reports whether a candidate username is already in use.
type Oracle interface {
	UsernameExists(ctx context.Context, candidate string) (bool, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, candidate string) (bool, error)

// UsernameExists calls f(ctx, candidate).
func (f OracleFunc) UsernameExists(ctx context.Context, candidate string) (bool, error) {
	return f(ctx, candidate)
}

// Transliterate replaces the known Slavic, Germanic and Romance diacritics with
// their base letter, preserving case. Input is composed to NFC first so that
// decomposed and precomposed spellings of the same name behave identically.
// Runes outside the table are returned unchanged.
func Transliterate(s string) string {
	return strings.Map(func(r rune) rune {
		if base, ok := transliterations[r]; ok {
			return base
		}
		return r
	}, norm.NFC.String(s))
}

// Normalize strips every rune outside [A-Za-z0-9] and lower-cases the rest.
func Normalize(s string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(s, ""))
}

// Generator turns display names into unique usernames.
type Generator struct {
	intn        func(n int) int
	maxAttempts int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand makes suffix generation draw from r. A *rand.Rand is not safe for
// concurrent use, so a generator built this way must not be shared between
// goroutines.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.intn = r.IntN
	}
}

// WithMaxAttempts caps the number of oracle checks per resolution. Values
// below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// NewGenerator returns a Generator using the global math/rand/v2 source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		intn:        rand.IntN,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate derives the base username for displayName and resolves it against oracle.
func (g *Generator) Generate(ctx context.Context, displayName string, oracle Oracle) (string, error) {
	return g.Resolve(ctx, g.Base(displayName), oracle)
}

// Base runs transliteration, normalization and length enforcement. The result
// is not checked for uniqueness.
func (g *Generator) Base(displayName string) string {
	return g.EnforceLength(Normalize(Transliterate(displayName)))
}

// EnforceLength clamps a normalized name to [MinLength, MaxLength]. Short names
// are padded with random base-36 characters up to MinLength; long names keep
// their first 16 characters followed by a random 4-character tag.
func (g *Generator) EnforceLength(name string) string {
	if len(name) < MinLength {
		name += g.randomToken(MinLength - len(name))
	}
	if len(name) > MaxLength {
		name = name[:truncateLength] + g.randomToken(tagLength)
	}
	return name
}

// Resolve returns the first candidate the oracle reports as free: base itself,
// then base followed by 1, 2, 3... The base is cut short when base plus suffix
// would exceed MaxLength. Checks run strictly one after another.
func (g *Generator) Resolve(ctx context.Context, base string, oracle Oracle) (string, error) {
	candidate := base
	for counter := 1; counter <= g.maxAttempts; counter++ {
		taken, err := oracle.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%w: check %q: %w", ErrOracleUnavailable, candidate, err)
		}
		if !taken {
			return candidate, nil
		}

		candidate, err = withSuffix(base, counter)
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %q after %d attempts", ErrUsernameExhausted, base, g.maxAttempts)
}

func withSuffix(base string, counter int) (string, error) {
	suffix := strconv.Itoa(counter)
	if len(base)+len(suffix) <= MaxLength {
		return base + suffix, nil
	}
	keep := MaxLength - len(suffix)
	if keep <= 0 {
		return "", fmt.Errorf("%w: suffix %q leaves no room for %q", ErrUsernameExhausted, suffix, base)
	}
	return base[:keep] + suffix, nil
}

func (g *Generator) randomToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.intn(len(alphabet))]
	}
	return string(b)
}
