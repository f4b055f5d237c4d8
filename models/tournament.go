package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	StatusDraft            TournamentStatus = "draft"
	StatusRegistrationOpen TournamentStatus = "registration_open"
	StatusOngoing          TournamentStatus = "ongoing"
	StatusCompleted        TournamentStatus = "completed"
	StatusCancelled        TournamentStatus = "cancelled"
)

type BracketType string

const (
	BracketSingleElimination BracketType = "single_elimination"
	BracketDoubleElimination BracketType = "double_elimination"
	BracketRoundRobin        BracketType = "round_robin"
	BracketBattleRoyale      BracketType = "battle_royale"
)

type ParticipationType string

const (
	ParticipationIndividual ParticipationType = "individual"
	ParticipationTeam       ParticipationType = "team"
)

// Tournament is owned by the external catalog. The engine reads it and
// writes status transitions only.
type Tournament struct {
	ID                int               `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	BracketType       BracketType       `json:"bracket_type" db:"bracket_type"`
	ParticipationType ParticipationType `json:"participation_type" db:"participation_type"`
	MaxParticipants   int               `json:"max_participants" db:"max_participants"`
	Status            TournamentStatus  `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}
