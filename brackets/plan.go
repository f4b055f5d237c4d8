package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/bracketlab/tournament-engine/models"
)

// PlannedMatch is one node of an in-memory bracket plan. Links are indices
// into Plan.Matches; the persistence layer translates them to database IDs.
type PlannedMatch struct {
	Section models.BracketSection
	Round   int
	Pos     int

	// Slots holds participant IDs for round-one placements; nil means the
	// slot is either a bye or fed by an earlier match.
	Slots [2]*int

	NextIndex      *int
	LoserNextIndex *int

	PositionHint int
}

// Plan is the whole bracket built and validated in memory before any
// persistence write.
type Plan struct {
	BracketSize int
	Rounds      int
	Matches     []PlannedMatch
}

type GenerateParams struct {
	Tournament *models.Tournament
	// Slots is the seeded slot array, length a power of two, nil entries
	// are byes.
	Slots []*int
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*Plan, error)
	GetName() string
}

var (
	ErrNotEnoughParticipants = errors.New("at least 2 participants are required")
	ErrSlotsNotPowerOfTwo    = errors.New("slot array length must be a power of two")
)

func checkSlots(slots []*int) error {
	n := len(slots)
	if n < 2 || n&(n-1) != 0 {
		return ErrSlotsNotPowerOfTwo
	}
	filled := 0
	for _, s := range slots {
		if s != nil {
			filled++
		}
	}
	if filled < 2 {
		return ErrNotEnoughParticipants
	}
	return nil
}

// Validate checks the structural invariants of a plan: exactly one terminal
// match, in-range forward links, and link depth bounded by the match count
// (no cycles).
func (p *Plan) Validate() error {
	terminals := 0
	for i := range p.Matches {
		m := &p.Matches[i]
		if m.NextIndex == nil {
			terminals++
			continue
		}
		if *m.NextIndex < 0 || *m.NextIndex >= len(p.Matches) || *m.NextIndex == i {
			return fmt.Errorf("match %d has invalid next link %d", i, *m.NextIndex)
		}
		if m.LoserNextIndex != nil && (*m.LoserNextIndex < 0 || *m.LoserNextIndex >= len(p.Matches)) {
			return fmt.Errorf("match %d has invalid loser link %d", i, *m.LoserNextIndex)
		}
	}
	if terminals != 1 {
		return fmt.Errorf("plan must have exactly one terminal match, found %d", terminals)
	}
	for i := range p.Matches {
		steps := 0
		cur := &p.Matches[i]
		for cur.NextIndex != nil {
			cur = &p.Matches[*cur.NextIndex]
			steps++
			if steps > len(p.Matches) {
				return fmt.Errorf("cycle detected in next links starting at match %d", i)
			}
		}
	}
	return nil
}

// FindIndex returns the arena index of the match at (section, round, pos),
// or -1 when absent.
func (p *Plan) FindIndex(section models.BracketSection, round, pos int) int {
	for i := range p.Matches {
		m := &p.Matches[i]
		if m.Section == section && m.Round == round && m.Pos == pos {
			return i
		}
	}
	return -1
}
