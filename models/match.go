package models

import "time"

type MatchState string

const (
	MatchStateScheduled     MatchState = "scheduled"
	MatchStateScoreRecorded MatchState = "score_recorded"
)

type BracketSection string

const (
	SectionWinners     BracketSection = "winners"
	SectionLosers      BracketSection = "losers"
	SectionGrandFinals BracketSection = "grand_finals"
)

// Match is one node of the bracket graph. NextMatchID carries the winner
// forward; LoserGoesToMatchID is set only in double elimination. Exactly one
// match in a bracket has a nil NextMatchID: the terminal match.
type Match struct {
	ID                  int            `json:"id" db:"id"`
	TournamentID        int            `json:"tournament_id" db:"tournament_id"`
	Section             BracketSection `json:"section" db:"section"`
	Round               int            `json:"round" db:"round"`
	Position            int            `json:"position" db:"position"`
	State               MatchState     `json:"state" db:"state"`
	Score1              *int           `json:"score1,omitempty" db:"score1"`
	Score2              *int           `json:"score2,omitempty" db:"score2"`
	WinnerParticipantID *int           `json:"winner_participant_id,omitempty" db:"winner_participant_id"`
	NextMatchID         *int           `json:"next_match_id,omitempty" db:"next_match_id"`
	LoserGoesToMatchID  *int           `json:"loser_goes_to_match_id,omitempty" db:"loser_goes_to_match_id"`
	BracketPositionHint int            `json:"bracket_position_hint" db:"bracket_position_hint"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`

	// Loaded separately, not mapped directly.
	Participants []MatchParticipant `json:"participants,omitempty" db:"-"`
}

type MatchParticipantStatus string

const (
	MatchParticipantNotPlayed MatchParticipantStatus = "not_played"
	MatchParticipantPlayed    MatchParticipantStatus = "played"
)

// MatchParticipant is one of at most two slots of a match. Name and
// PictureRef are denormalized for bracket rendering.
type MatchParticipant struct {
	MatchID       int                    `json:"match_id" db:"match_id"`
	ParticipantID int                    `json:"participant_id" db:"participant_id"`
	Name          string                 `json:"name" db:"name"`
	PictureRef    *string                `json:"picture_ref,omitempty" db:"picture_ref"`
	Status        MatchParticipantStatus `json:"status" db:"status"`
	IsWinner      bool                   `json:"is_winner" db:"is_winner"`
	ResultText    *string                `json:"result_text,omitempty" db:"result_text"`
}
