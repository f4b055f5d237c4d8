package brackets

import (
	"context"
	"math/bits"

	"github.com/bracketlab/tournament-engine/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// Generate builds the full single-elimination tree for a seeded slot array.
// Round one gets the slot contents (0-2 participants per match, nil slots
// are byes); every later round is created empty and linked so that the
// winner of (round r, pos m) advances to (round r+1, pos m/2).
func (g *SingleEliminationGenerator) Generate(_ context.Context, params GenerateParams) (*Plan, error) {
	if err := checkSlots(params.Slots); err != nil {
		return nil, err
	}

	size := len(params.Slots)
	rounds := bits.Len(uint(size)) - 1

	plan := &Plan{
		BracketSize: size,
		Rounds:      rounds,
		Matches:     make([]PlannedMatch, 0, size-1),
	}

	roundOffset := make([]int, rounds+2)
	offset := 0
	for r := 1; r <= rounds; r++ {
		roundOffset[r] = offset
		offset += size >> uint(r)
	}
	roundOffset[rounds+1] = offset

	for r := 1; r <= rounds; r++ {
		count := size >> uint(r)
		for m := 0; m < count; m++ {
			pm := PlannedMatch{
				Section:      models.SectionWinners,
				Round:        r,
				Pos:          m,
				PositionHint: m,
			}
			if r == 1 {
				pm.Slots[0] = params.Slots[2*m]
				pm.Slots[1] = params.Slots[2*m+1]
				pm.PositionHint = 2 * m
			}
			if r < rounds {
				next := roundOffset[r+1] + m/2
				pm.NextIndex = &next
			}
			plan.Matches = append(plan.Matches, pm)
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
