// Package drugdata provides drug interaction and label lookups. The bundled
// implementations simulate the public FDA APIs; the summary generator can use
// OpenAI when a key is configured.
package drugdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"medication-tracker-server/internal/models"
)

// InteractionResult is what a checker reports for a pair of drugs.
type InteractionResult struct {
	Found       bool
	Severity    models.Severity
	Description string
}

// InteractionChecker compares two drugs by name.
type InteractionChecker interface {
	Check(ctx context.Context, drug1, drug2 string) (InteractionResult, error)
}

// SimulatedChecker reports a moderate interaction for a random share of pairs.
type SimulatedChecker struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

// NewSimulatedChecker returns a checker that finds an interaction with the
// given probability.
func NewSimulatedChecker(probability float64, seed uint64) *SimulatedChecker {
	return &SimulatedChecker{
		rng:         rand.New(rand.NewPCG(seed, seed)),
		probability: probability,
	}
}

func (c *SimulatedChecker) Check(ctx context.Context, drug1, drug2 string) (InteractionResult, error) {
	if err := ctx.Err(); err != nil {
		return InteractionResult{}, err
	}

	c.mu.Lock()
	roll := c.rng.Float64()
	c.mu.Unlock()

	if roll >= c.probability {
		return InteractionResult{}, nil
	}
	return InteractionResult{
		Found:       true,
		Severity:    models.SeverityModerate,
		Description: fmt.Sprintf("Potential interaction between %s and %s. Monitor for increased side effects.", drug1, drug2),
	}, nil
}
