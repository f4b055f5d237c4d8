package brackets

import "sort"

// BattleRoyaleEntry is one lobby result: final placement (1-based) plus the
// kill count reported for the participant.
type BattleRoyaleEntry struct {
	ParticipantID int
	Placement     int
	Kills         int
}

// BattleRoyaleScored is an entry with its computed point total.
type BattleRoyaleScored struct {
	BattleRoyaleEntry
	Points int
}

// BattleRoyaleScoring turns placements and kills into points: a placement
// lookup table plus kills times a flat factor. No match graph is involved.
type BattleRoyaleScoring struct {
	PlacementPoints map[int]int
	KillFactor      int
}

// NewBattleRoyaleScoring returns the default scoring: top-eight placement
// points and one point per kill.
func NewBattleRoyaleScoring() BattleRoyaleScoring {
	return BattleRoyaleScoring{
		PlacementPoints: map[int]int{
			1: 12, 2: 9, 3: 7, 4: 5, 5: 4, 6: 3, 7: 2, 8: 1,
		},
		KillFactor: 1,
	}
}

func (s BattleRoyaleScoring) Points(placement, kills int) int {
	return s.PlacementPoints[placement] + kills*s.KillFactor
}

// Score computes point totals and returns entries ordered by points desc,
// placement asc, then participant ID asc.
func (s BattleRoyaleScoring) Score(entries []BattleRoyaleEntry) []BattleRoyaleScored {
	scored := make([]BattleRoyaleScored, len(entries))
	for i, e := range entries {
		scored[i] = BattleRoyaleScored{
			BattleRoyaleEntry: e,
			Points:            s.Points(e.Placement, e.Kills),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Points != scored[j].Points {
			return scored[i].Points > scored[j].Points
		}
		if scored[i].Placement != scored[j].Placement {
			return scored[i].Placement < scored[j].Placement
		}
		return scored[i].ParticipantID < scored[j].ParticipantID
	})
	return scored
}
