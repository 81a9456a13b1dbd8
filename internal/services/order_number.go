package services

import (
	"fmt"
	"math/rand"
	"time"

	"storefront/internal/domain"
)

// orderNumberFormat is stable and must match on read and write:
// ORD-<UTC second timestamp>-<4-digit suffix in [1000,9999]>.
const (
	numberTimestampLayout = "20060102150405"
	suffixFloor           = 1000
	suffixSpan            = 9000
)

// NumberGenerator produces globally unique order numbers. Clock and entropy
// are injected so generation is deterministic under test.
type NumberGenerator struct {
	now         func() time.Time
	intn        func(n int) int
	randomTries int
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		now:         time.Now,
		intn:        rand.Intn,
		randomTries: 5,
	}
}

// NewNumberGeneratorWith builds a generator with explicit clock and entropy.
func NewNumberGeneratorWith(now func() time.Time, intn func(int) int) *NumberGenerator {
	return &NumberGenerator{now: now, intn: intn, randomTries: 5}
}

// Generate returns an order number not present in the store. The exists check
// runs against the caller's transaction. After a bounded number of random
// draws it escalates to a deterministic walk of the suffix space instead of
// retrying unboundedly; only a fully exhausted second is reported as an
// error, and that one is transient.
func (g *NumberGenerator) Generate(exists func(number string) (bool, error)) (string, error) {
	ts := g.now().UTC().Format(numberTimestampLayout)

	for i := 0; i < g.randomTries; i++ {
		number := fmt.Sprintf("ORD-%s-%04d", ts, suffixFloor+g.intn(suffixSpan))
		taken, err := exists(number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}

	// Random draws keep colliding; probe every suffix once.
	for n := suffixFloor; n < suffixFloor+suffixSpan; n++ {
		number := fmt.Sprintf("ORD-%s-%04d", ts, n)
		taken, err := exists(number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}

	return "", domain.Transientf("order number space exhausted, please retry")
}
