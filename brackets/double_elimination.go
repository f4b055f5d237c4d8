package brackets

import (
	"context"
	"math/bits"

	"github.com/bracketlab/tournament-engine/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// lbRoundCount returns the number of matches in losers-bracket round l for
// a winners bracket of the given size. Odd rounds pair up a fresh wave of
// winners-bracket losers (round 1) or consolidate (majors); even rounds are
// minors that receive one new winners-bracket loser per match.
func lbRoundCount(size, l int) int {
	return size >> uint((l+1)/2+1)
}

// Generate builds a full double-elimination graph: the winners bracket, a
// losers bracket with alternating minor/major rounds, and a single grand
// finals match fed by both bracket finals. Every winners-bracket match gets
// its loser destination at creation time. Minor-round drop-in order is
// reversed on every other winners round to delay rematches between players
// who already met.
func (g *DoubleEliminationGenerator) Generate(_ context.Context, params GenerateParams) (*Plan, error) {
	if err := checkSlots(params.Slots); err != nil {
		return nil, err
	}

	size := len(params.Slots)
	rounds := bits.Len(uint(size)) - 1
	lbRounds := 2 * (rounds - 1)

	wbOffset := make([]int, rounds+1)
	offset := 0
	for r := 1; r <= rounds; r++ {
		wbOffset[r] = offset
		offset += size >> uint(r)
	}
	lbOffset := make([]int, lbRounds+1)
	for l := 1; l <= lbRounds; l++ {
		lbOffset[l] = offset
		offset += lbRoundCount(size, l)
	}
	gfIndex := offset

	plan := &Plan{
		BracketSize: size,
		Rounds:      rounds,
		Matches:     make([]PlannedMatch, 0, gfIndex+1),
	}

	link := func(idx int) *int { v := idx; return &v }

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
				pm.NextIndex = link(wbOffset[r+1] + m/2)
			} else {
				pm.NextIndex = link(gfIndex)
			}
			switch {
			case lbRounds == 0:
				// Two-entrant bracket: the loser of the only winners
				// match gets a second life straight in the grand finals.
				pm.LoserNextIndex = link(gfIndex)
			case r == 1:
				pm.LoserNextIndex = link(lbOffset[1] + m/2)
			default:
				minor := 2 * (r - 1)
				pos := m
				if r%2 == 0 {
					pos = lbRoundCount(size, minor) - 1 - m
				}
				pm.LoserNextIndex = link(lbOffset[minor] + pos)
			}
			plan.Matches = append(plan.Matches, pm)
		}
	}

	for l := 1; l <= lbRounds; l++ {
		count := lbRoundCount(size, l)
		for m := 0; m < count; m++ {
			pm := PlannedMatch{
				Section:      models.SectionLosers,
				Round:        l,
				Pos:          m,
				PositionHint: m,
			}
			if l < lbRounds {
				if lbRoundCount(size, l+1) == count {
					pm.NextIndex = link(lbOffset[l+1] + m)
				} else {
					pm.NextIndex = link(lbOffset[l+1] + m/2)
				}
			} else {
				pm.NextIndex = link(gfIndex)
			}
			plan.Matches = append(plan.Matches, pm)
		}
	}

	plan.Matches = append(plan.Matches, PlannedMatch{
		Section: models.SectionGrandFinals,
		Round:   1,
		Pos:     0,
	})

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}
