package drugdata

import (
	"context"
	"fmt"
)

// Label is the subset of drug label data the tracker keeps.
type Label struct {
	Indications []string
	SideEffects []string
}

// LabelSource looks up label data by drug name.
type LabelSource interface {
	Lookup(ctx context.Context, drug string) (*Label, error)
}

// SimulatedLabels returns the same generic label for every drug.
type SimulatedLabels struct{}

func (SimulatedLabels) Lookup(ctx context.Context, drug string) (*Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Label{
		Indications: []string{fmt.Sprintf("Treatment of conditions related to %s", drug)},
		SideEffects: []string{"Nausea", "Dizziness", "Headache"},
	}, nil
}
