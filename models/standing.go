package models

import "time"

// Standing is one row of a ranked group table. Created zeroed at group
// creation, mutated incrementally as fixture results arrive, never deleted
// except on a full bracket reset.
type Standing struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	GroupID       int       `json:"group_id" db:"group_id"`
	ParticipantID int       `json:"participant_id" db:"participant_id"`
	MatchesPlayed int       `json:"matches_played" db:"matches_played"`
	Wins          int       `json:"wins" db:"wins"`
	Draws         int       `json:"draws" db:"draws"`
	Losses        int       `json:"losses" db:"losses"`
	ScoreFor      int       `json:"score_for" db:"score_for"`
	ScoreAgainst  int       `json:"score_against" db:"score_against"`
	Points        int       `json:"points" db:"points"`
	Position      int       `json:"position" db:"position"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// GoalDifference is the first tie-break metric after points.
func (s *Standing) GoalDifference() int {
	return s.ScoreFor - s.ScoreAgainst
}
