package models

import "time"

type ParticipantSourceKind string

const (
	SourcePlayer ParticipantSourceKind = "player"
	SourceTeam   ParticipantSourceKind = "team"
)

// Participant is an accepted tournament entry handed over by the external
// registration subsystem. Immutable once referenced by a match.
type Participant struct {
	ID           int                   `json:"id" db:"id"`
	TournamentID int                   `json:"tournament_id" db:"tournament_id"`
	DisplayName  string                `json:"display_name" db:"display_name"`
	PictureRef   *string               `json:"picture_ref,omitempty" db:"picture_ref"`
	SourceKind   ParticipantSourceKind `json:"source_kind" db:"source_kind"`
	CreatedAt    time.Time             `json:"created_at" db:"created_at"`
}
