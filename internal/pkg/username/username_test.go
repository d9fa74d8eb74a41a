package username

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validUsername = regexp.MustCompile(`^[a-z0-9]+$`)

// takenSet is an in-memory oracle that records every candidate it was asked about.
type takenSet struct {
	taken   map[string]bool
	checked []string
}

func newTakenSet(names ...string) *takenSet {
	s := &takenSet{taken: make(map[string]bool)}
	for _, n := range names {
		s.taken[n] = true
	}
	return s
}

func (s *takenSet) UsernameExists(_ context.Context, candidate string) (bool, error) {
	s.checked = append(s.checked, candidate)
	return s.taken[candidate], nil
}

func seeded(seed uint64) *Generator {
	return NewGenerator(WithRand(rand.New(rand.NewPCG(seed, seed))))
}

func TestTransliterate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Müller Čechová", "Muller Cechova"},
		{"čšžćđüöäáéíóú", "cszcduoaaeiou"},
		{"ČŠŽĆĐÜÖÄÁÉÍÓÚ", "CSZCDUOAAEIOU"},
		{"Ñandú", "Ñandu"},
		{"Иван", "Иван"},
		{"plain ascii 123", "plain ascii 123"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Transliterate(tt.in))
		})
	}
}

func TestTransliterate_DecomposedInput(t *testing.T) {
	// "Mu" + COMBINING DIAERESIS + "ller", "C" + COMBINING CARON + "ech"
	decomposed := "Mu\u0308ller C\u030cech"
	assert.Equal(t, "Muller Cech", Transliterate(decomposed))
}

func TestTransliterate_RemovesTableCharacters(t *testing.T) {
	var table strings.Builder
	for r := range transliterations {
		table.WriteRune(r)
	}
	out := Transliterate(table.String())
	for r := range transliterations {
		assert.NotContains(t, out, string(r))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mullercechova", Normalize("Muller Cechova"))
	assert.Equal(t, "johnsmith42", Normalize("  John_Smith-42!! "))
	assert.Equal(t, "", Normalize("Иван 😀"))
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"Müller Čechová", "O'Brien, Jr.", "x", "ÉÍÓÚ éíóú"} {
		once := Normalize(Transliterate(in))
		assert.Equal(t, once, Normalize(Transliterate(once)), in)
	}
}

func TestEnforceLength(t *testing.T) {
	g := seeded(7)

	t.Run("within bounds passes through", func(t *testing.T) {
		assert.Equal(t, "mullercechova", g.EnforceLength("mullercechova"))
		assert.Equal(t, "abcdefgh", g.EnforceLength("abcdefgh"))
		assert.Equal(t, "abcdefghijklmnopqrst", g.EnforceLength("abcdefghijklmnopqrst"))
	})

	t.Run("short names are padded", func(t *testing.T) {
		out := g.EnforceLength("al")
		require.Len(t, out, MinLength)
		assert.True(t, strings.HasPrefix(out, "al"))
		assert.Regexp(t, validUsername, out)
	})

	t.Run("empty names become random", func(t *testing.T) {
		out := g.EnforceLength("")
		require.Len(t, out, MinLength)
		assert.Regexp(t, validUsername, out)
	})

	t.Run("long names are cut and tagged", func(t *testing.T) {
		long := "abcdefghijklmnopqrstuvwxy"
		out := g.EnforceLength(long)
		require.Len(t, out, MaxLength)
		assert.Equal(t, long[:16], out[:16])
		assert.Regexp(t, validUsername, out[16:])
	})
}

func TestGenerator_SeededIsReproducible(t *testing.T) {
	a := seeded(42).Base("Al")
	b := seeded(42).Base("Al")
	assert.Equal(t, a, b)
}

func TestResolve_FreeBaseReturnedAsIs(t *testing.T) {
	oracle := newTakenSet()
	got, err := seeded(1).Generate(context.Background(), "Müller Čechová", oracle)
	require.NoError(t, err)
	assert.Equal(t, "mullercechova", got)
	assert.Equal(t, []string{"mullercechova"}, oracle.checked)
}

func TestResolve_AppendsCounter(t *testing.T) {
	oracle := newTakenSet("johnsmith", "johnsmith1", "johnsmith2")
	got, err := NewGenerator().Resolve(context.Background(), "johnsmith", oracle)
	require.NoError(t, err)
	assert.Equal(t, "johnsmith3", got)
	assert.Equal(t, []string{"johnsmith", "johnsmith1", "johnsmith2", "johnsmith3"}, oracle.checked)
}

func TestResolve_TruncatesBaseToFitSuffix(t *testing.T) {
	base := "abcdefghijklmnopqrst"
	oracle := newTakenSet(base)
	for i := 1; i <= 9; i++ {
		oracle.taken[base[:19]+string(rune('0'+i))] = true
	}

	got, err := NewGenerator().Resolve(context.Background(), base, oracle)
	require.NoError(t, err)
	assert.Equal(t, base[:18]+"10", got)
	for _, c := range oracle.checked {
		assert.LessOrEqual(t, len(c), MaxLength, c)
	}
}

func TestGenerate_LongNameCollidingOnce(t *testing.T) {
	name := "Abcdefghij Klmnopqrstu Vwxy" // 24 letters
	g := seeded(3)
	base := seeded(3).Base(name)
	require.Len(t, base, MaxLength)

	oracle := newTakenSet(base)
	got, err := g.Generate(context.Background(), name, oracle)
	require.NoError(t, err)
	assert.Len(t, got, MaxLength)
	assert.Equal(t, "abcdefghijklmnop", got[:16])
	assert.Equal(t, base[:19]+"1", got)
	assert.Len(t, oracle.checked, 2)
}

func TestResolve_OracleFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	oracle := OracleFunc(func(context.Context, string) (bool, error) {
		return false, boom
	})

	_, err := NewGenerator().Resolve(context.Background(), "johnsmith", oracle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOracleUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_Exhausted(t *testing.T) {
	calls := 0
	oracle := OracleFunc(func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})

	_, err := NewGenerator(WithMaxAttempts(5)).Resolve(context.Background(), "johnsmith", oracle)
	assert.ErrorIs(t, err, ErrUsernameExhausted)
	assert.Equal(t, 5, calls)
}

func TestWithMaxAttempts_IgnoresNonPositive(t *testing.T) {
	g := NewGenerator(WithMaxAttempts(0), WithMaxAttempts(-3))
	assert.Equal(t, DefaultMaxAttempts, g.maxAttempts)
}

func TestGenerate_OutputInvariants(t *testing.T) {
	names := []string{
		"", "Al", "Müller Čechová", "Иван Петров", "😀😀😀",
		"Đorđe Balašević", "Jean-Luc Picard", "a very very long display name indeed",
		"12345", "ÁÉÍÓÚ ÁÉÍÓÚ ÁÉÍÓÚ ÁÉÍÓÚ ÁÉÍÓÚ",
	}
	g := seeded(99)
	oracle := newTakenSet()
	for _, name := range names {
		got, err := g.Generate(context.Background(), name, oracle)
		require.NoError(t, err, name)
		assert.Regexp(t, validUsername, got, name)
		assert.GreaterOrEqual(t, len(got), MinLength, name)
		assert.LessOrEqual(t, len(got), MaxLength, name)
		oracle.taken[got] = true
	}
}
