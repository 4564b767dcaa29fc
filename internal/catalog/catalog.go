// Package catalog provides the stage catalog: the fixed, ordered registry of
// sale pipeline stages. The catalog is immutable after construction and
// therefore safe for concurrent readers.
package catalog

import (
	"errors"
	"fmt"

	"github.com/scrypster/saleflow/pkg/types"
)

// ErrUnknownStage indicates a stage ID outside the catalog range. This is a
// caller-usage error, distinct from a blocked transition.
var ErrUnknownStage = errors.New("unknown stage")

// Default catalog stage IDs for the Portuguese sale pipeline.
const (
	StagePreparation = 0
	StageProposals   = 1
	StageCPCV        = 2
	StageEscritura   = 3
	StagePostDeed    = 4
	StageSold        = 5
)

// Catalog is an ordered, immutable stage registry. Stage IDs are dense:
// 0..MaxStage with no gaps, and the highest stage is terminal.
type Catalog struct {
	stages []types.Stage

	// proposalGateStage is the stage whose operational-flow advance is gated
	// on an accepted written proposal (the Listing/Proposals → CPCV boundary).
	proposalGateStage int
}

// New builds a catalog from an ordered stage list. It validates that IDs are
// dense from 0, that only the last stage is terminal, and that the gate stage
// exists.
func New(stages []types.Stage, proposalGateStage int) (*Catalog, error) {
	if len(stages) < 2 {
		return nil, fmt.Errorf("catalog: need at least two stages, got %d", len(stages))
	}

	for i, s := range stages {
		if s.ID != i {
			return nil, fmt.Errorf("catalog: stage IDs must be dense from 0, got %d at position %d", s.ID, i)
		}
		if s.Label == "" {
			return nil, fmt.Errorf("catalog: stage %d has no label", i)
		}
		if s.Terminal != (i == len(stages)-1) {
			return nil, fmt.Errorf("catalog: exactly the last stage must be terminal, stage %d violates this", i)
		}
	}

	if proposalGateStage < 0 || proposalGateStage >= len(stages)-1 {
		return nil, fmt.Errorf("catalog: proposal gate stage %d is out of range", proposalGateStage)
	}

	cp := make([]types.Stage, len(stages))
	copy(cp, stages)
	return &Catalog{stages: cp, proposalGateStage: proposalGateStage}, nil
}

// Default returns the built-in Portuguese sale pipeline:
// Preparation → Listing/Proposals → CPCV → Escritura → Post-Deed → Sold.
func Default() *Catalog {
	c, err := New([]types.Stage{
		{
			ID:    StagePreparation,
			Label: "Preparation",
			RequiredDocumentCategories: []string{
				"certidao_permanente",
				"caderneta_predial",
				"certificado_energetico",
			},
		},
		{
			ID:    StageProposals,
			Label: "Listing & Proposals",
		},
		{
			ID:                         StageCPCV,
			Label:                      "CPCV",
			RequiredDocumentCategories: []string{"cpcv"},
		},
		{
			ID:                         StageEscritura,
			Label:                      "Escritura",
			RequiredDocumentCategories: []string{"escritura"},
		},
		{
			ID:    StagePostDeed,
			Label: "Post-Deed",
		},
		{
			ID:       StageSold,
			Label:    "Sold",
			Terminal: true,
		},
	}, StageProposals)
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

// Get returns the stage with the given ID, or ErrUnknownStage if the ID is
// out of range.
func (c *Catalog) Get(stageID int) (types.Stage, error) {
	if stageID < 0 || stageID >= len(c.stages) {
		return types.Stage{}, fmt.Errorf("%w: %d", ErrUnknownStage, stageID)
	}
	return c.stages[stageID], nil
}

// MaxStage returns the highest (terminal) stage ID.
func (c *Catalog) MaxStage() int {
	return len(c.stages) - 1
}

// Next returns the stage after stageID. ok is false when stageID is terminal.
func (c *Catalog) Next(stageID int) (next int, ok bool) {
	if stageID < 0 || stageID >= c.MaxStage() {
		return 0, false
	}
	return stageID + 1, true
}

// Previous returns the stage before stageID. ok is false when stageID is 0.
func (c *Catalog) Previous(stageID int) (prev int, ok bool) {
	if stageID <= 0 || stageID > c.MaxStage() {
		return 0, false
	}
	return stageID - 1, true
}

// ProposalGateStage returns the stage whose operational-flow advance is
// gated on proposal acceptance.
func (c *Catalog) ProposalGateStage() int {
	return c.proposalGateStage
}

// Stages returns a copy of the stage list, ordered by ID.
func (c *Catalog) Stages() []types.Stage {
	cp := make([]types.Stage, len(c.stages))
	copy(cp, c.stages)
	return cp
}
