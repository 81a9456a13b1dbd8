package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 9, 30, 45, 0, time.UTC)
}

func neverTaken(string) (bool, error) { return false, nil }

func TestGenerateFormat(t *testing.T) {
	g := NewNumberGeneratorWith(fixedClock, func(int) int { return 0 })

	number, err := g.Generate(neverTaken)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250615093045-1000", number)
}

func TestGenerateSuffixRange(t *testing.T) {
	g := NewNumberGeneratorWith(fixedClock, func(n int) int { return n - 1 })

	number, err := g.Generate(neverTaken)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250615093045-9999", number)
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	calls := 0
	g := NewNumberGeneratorWith(fixedClock, func(int) int {
		calls++
		return calls * 100
	})
	taken := map[string]bool{"ORD-20250615093045-1100": true}

	number, err := g.Generate(func(n string) (bool, error) { return taken[n], nil })
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250615093045-1200", number)
	assert.Equal(t, 2, calls)
}

func TestGenerateEscalatesToSequentialProbe(t *testing.T) {
	// Entropy keeps producing the same taken suffix; the generator must stop
	// gambling and walk the space instead.
	g := NewNumberGeneratorWith(fixedClock, func(int) int { return 5 })
	taken := map[string]bool{"ORD-20250615093045-1005": true}

	number, err := g.Generate(func(n string) (bool, error) { return taken[n], nil })
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250615093045-1000", number)
}

func TestGenerateExhaustedSecondIsTransient(t *testing.T) {
	g := NewNumberGeneratorWith(fixedClock, func(int) int { return 0 })

	_, err := g.Generate(func(string) (bool, error) { return true, nil })
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTransient))
}

func TestGenerateManyUniqueWithinOneSecond(t *testing.T) {
	// Real entropy with a pinned clock: every draw lands in the same
	// timestamp, so uniqueness rides entirely on the suffix logic.
	g := NewNumberGeneratorWith(fixedClock, rand.Intn)

	seen := map[string]bool{}
	exists := func(n string) (bool, error) { return seen[n], nil }

	for i := 0; i < 50; i++ {
		number, err := g.Generate(exists)
		require.NoError(t, err)
		require.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, 50)
}
