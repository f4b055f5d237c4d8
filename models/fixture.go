package models

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "scheduled"
	FixtureCompleted FixtureStatus = "completed"
)

// RoundRobinFixture is one scheduled group pairing. A completed fixture with
// a nil WinnerID is a draw.
type RoundRobinFixture struct {
	ID             int           `json:"id" db:"id"`
	GroupID        int           `json:"group_id" db:"group_id"`
	RoundNumber    int           `json:"round_number" db:"round_number"`
	Participant1ID int           `json:"participant1_id" db:"participant1_id"`
	Participant2ID int           `json:"participant2_id" db:"participant2_id"`
	Score1         *int          `json:"score1,omitempty" db:"score1"`
	Score2         *int          `json:"score2,omitempty" db:"score2"`
	WinnerID       *int          `json:"winner_id,omitempty" db:"winner_id"`
	Status         FixtureStatus `json:"status" db:"status"`
}
