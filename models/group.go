package models

// Group is one round-robin pool created by the scheduler. Lifetime equals
// the group stage of its tournament. Battle-royale tournaments use a single
// primary group to anchor their standings.
type Group struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`
	IsPrimary    bool   `json:"is_primary" db:"is_primary"`
}

// GroupMembership ties a participant to a group. The pair is unique.
type GroupMembership struct {
	GroupID       int `json:"group_id" db:"group_id"`
	ParticipantID int `json:"participant_id" db:"participant_id"`
}
