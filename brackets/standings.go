package brackets

import (
	"sort"

	"github.com/bracketlab/tournament-engine/models"
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
)

// ApplyFixtureResult folds one finalized fixture into both standings rows.
// Equal scores count as a draw for each side.
func ApplyFixtureResult(row1, row2 *models.Standing, score1, score2 int) {
	row1.MatchesPlayed++
	row2.MatchesPlayed++
	row1.ScoreFor += score1
	row1.ScoreAgainst += score2
	row2.ScoreFor += score2
	row2.ScoreAgainst += score1

	switch {
	case score1 > score2:
		row1.Wins++
		row1.Points += PointsForWin
		row2.Losses++
	case score2 > score1:
		row2.Wins++
		row2.Points += PointsForWin
		row1.Losses++
	default:
		row1.Draws++
		row2.Draws++
		row1.Points += PointsForDraw
		row2.Points += PointsForDraw
	}
}

// SortStandings orders rows by points desc, goal difference desc, score for
// desc, then participant ID asc as the stable deterministic tie-break, and
// rewrites every Position to match the fresh order.
func SortStandings(rows []*models.Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return a.ParticipantID < b.ParticipantID
	})
	for i, row := range rows {
		row.Position = i + 1
	}
}
