package services

import (
	"context"
	"fmt"

	"github.com/bracketlab/tournament-engine/brackets"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/bracketlab/tournament-engine/repositories"
)

const byeResultText = "bye"

// progression bundles the bracket-graph plumbing shared by the generation,
// match and playoff services: persisting an in-memory plan, advancing
// participants along match links, and the bye cascade.
type progression struct {
	tournamentRepo       repositories.TournamentRepository
	matchRepo            repositories.MatchRepository
	matchParticipantRepo repositories.MatchParticipantRepository
}

// bracketState is the tournament's full match graph loaded inside one
// transaction. The cascade mutates it in lockstep with its writes so later
// iterations observe earlier resolutions.
type bracketState struct {
	matches []*models.Match
	byID    map[int]*models.Match
	parts   map[int][]*models.MatchParticipant
	// feeders lists, per match, the matches whose winner or loser link
	// points at it.
	feeders map[int][]*models.Match
}

func (p *progression) loadState(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*bracketState, error) {
	matches, err := p.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	entries, err := p.matchParticipantRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}

	st := &bracketState{
		matches: matches,
		byID:    make(map[int]*models.Match, len(matches)),
		parts:   make(map[int][]*models.MatchParticipant),
		feeders: make(map[int][]*models.Match),
	}
	for _, m := range matches {
		st.byID[m.ID] = m
	}
	for _, mp := range entries {
		st.parts[mp.MatchID] = append(st.parts[mp.MatchID], mp)
	}
	for _, m := range matches {
		if m.NextMatchID != nil {
			st.feeders[*m.NextMatchID] = append(st.feeders[*m.NextMatchID], m)
		}
		if m.LoserGoesToMatchID != nil {
			st.feeders[*m.LoserGoesToMatchID] = append(st.feeders[*m.LoserGoesToMatchID], m)
		}
	}
	return st, nil
}

// materializePlan writes a validated plan as match rows: one insert pass to
// obtain IDs, one link pass translating arena indices, then the round-one
// participant slots with denormalized display data.
func (p *progression) materializePlan(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, plan *brackets.Plan, participants map[int]*models.Participant) error {
	ids := make([]int, len(plan.Matches))
	for i := range plan.Matches {
		pm := &plan.Matches[i]
		match := &models.Match{
			TournamentID:        tournament.ID,
			Section:             pm.Section,
			Round:               pm.Round,
			Position:            pm.Pos,
			State:               models.MatchStateScheduled,
			BracketPositionHint: pm.PositionHint,
		}
		if err := p.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		ids[i] = match.ID
	}

	for i := range plan.Matches {
		pm := &plan.Matches[i]
		if pm.NextIndex == nil && pm.LoserNextIndex == nil {
			continue
		}
		var next, loser *int
		if pm.NextIndex != nil {
			next = &ids[*pm.NextIndex]
		}
		if pm.LoserNextIndex != nil {
			loser = &ids[*pm.LoserNextIndex]
		}
		if err := p.matchRepo.UpdateLinks(ctx, exec, ids[i], next, loser); err != nil {
			return err
		}
	}

	for i := range plan.Matches {
		pm := &plan.Matches[i]
		for _, slot := range pm.Slots {
			if slot == nil {
				continue
			}
			participant, ok := participants[*slot]
			if !ok {
				return fmt.Errorf("plan references unknown participant %d", *slot)
			}
			mp := &models.MatchParticipant{
				MatchID:       ids[i],
				ParticipantID: participant.ID,
				Name:          participant.DisplayName,
				PictureRef:    participant.PictureRef,
				Status:        models.MatchParticipantNotPlayed,
			}
			if _, err := p.matchParticipantRepo.InsertIfAbsent(ctx, exec, mp); err != nil {
				return err
			}
		}
	}
	return nil
}

// advanceTo inserts a participant into the target match unless already
// present, so retried deliveries stay idempotent. The display data is copied
// from the source slot row.
func (p *progression) advanceTo(ctx context.Context, exec repositories.SQLExecutor, st *bracketState, targetMatchID int, source *models.MatchParticipant) (bool, error) {
	mp := &models.MatchParticipant{
		MatchID:       targetMatchID,
		ParticipantID: source.ParticipantID,
		Name:          source.Name,
		PictureRef:    source.PictureRef,
		Status:        models.MatchParticipantNotPlayed,
	}
	inserted, err := p.matchParticipantRepo.InsertIfAbsent(ctx, exec, mp)
	if err != nil {
		return false, err
	}
	if inserted {
		st.parts[targetMatchID] = append(st.parts[targetMatchID], mp)
	}
	return inserted, nil
}

// resolvable reports whether the match can be auto-finalized right now: it
// is still scheduled, holds fewer than two participants, and every feeder
// has already delivered (recorded) so no further participant can arrive.
func (st *bracketState) resolvable(m *models.Match) bool {
	if m.State != models.MatchStateScheduled {
		return false
	}
	if len(st.parts[m.ID]) >= 2 {
		return false
	}
	for _, feeder := range st.feeders[m.ID] {
		if feeder.State != models.MatchStateScoreRecorded {
			return false
		}
	}
	return true
}

// cascadeByes drives bye resolution to a fixed point. A one-participant
// match whose feeders are all settled is finalized in favor of its sole
// participant and the winner advanced; a zero-participant match in the same
// situation (two byes colliding in a losers bracket) is voided so its own
// next match can settle. The loop is capped by bracket depth; hitting the
// cap with work left is reported as partial completion, never swallowed.
func (p *progression) cascadeByes(ctx context.Context, exec repositories.SQLExecutor, st *bracketState) (int, error) {
	depth := make(map[string]bool)
	for _, m := range st.matches {
		depth[fmt.Sprintf("%s/%d", m.Section, m.Round)] = true
	}
	maxIters := len(depth) + 1

	processed := 0
	for iter := 0; iter < maxIters; iter++ {
		changed := false
		for _, m := range st.matches {
			if !st.resolvable(m) {
				continue
			}
			if err := p.finalizeUnopposed(ctx, exec, st, m); err != nil {
				return processed, err
			}
			processed++
			changed = true
		}
		if !changed {
			return processed, nil
		}
	}

	for _, m := range st.matches {
		if st.resolvable(m) {
			return processed, fmt.Errorf("%w: %d matches resolved before iteration cap", ErrPartialCompletion, processed)
		}
	}
	return processed, nil
}

// finalizeUnopposed records a bye (one participant) or void (none) outcome
// and advances the surviving participant, if any.
func (p *progression) finalizeUnopposed(ctx context.Context, exec repositories.SQLExecutor, st *bracketState, m *models.Match) error {
	slots := st.parts[m.ID]

	var winnerID *int
	if len(slots) == 1 {
		winnerID = &slots[0].ParticipantID
	}
	if err := p.matchRepo.UpdateResult(ctx, exec, m.ID, nil, nil, winnerID, models.MatchStateScoreRecorded); err != nil {
		return err
	}
	m.State = models.MatchStateScoreRecorded
	m.WinnerParticipantID = winnerID

	if len(slots) == 0 {
		return nil
	}

	winner := slots[0]
	text := byeResultText
	if err := p.matchParticipantRepo.UpdateOutcome(ctx, exec, m.ID, winner.ParticipantID, true, &text, models.MatchParticipantPlayed); err != nil {
		return err
	}
	winner.IsWinner = true
	winner.Status = models.MatchParticipantPlayed

	if m.NextMatchID != nil {
		if _, err := p.advanceTo(ctx, exec, st, *m.NextMatchID, winner); err != nil {
			return err
		}
	}
	return nil
}

// completeIfFinished flips the tournament to completed once the terminal
// match has a recorded winner. Returns the champion's participant ID.
func (p *progression) completeIfFinished(ctx context.Context, exec repositories.SQLExecutor, st *bracketState, tournament *models.Tournament) (bool, *int, error) {
	for _, m := range st.matches {
		if m.NextMatchID != nil {
			continue
		}
		if m.State != models.MatchStateScoreRecorded || m.WinnerParticipantID == nil {
			return false, nil, nil
		}
		if tournament.Status != models.StatusCompleted {
			if err := p.tournamentRepo.UpdateStatus(ctx, exec, tournament.ID, models.StatusCompleted); err != nil {
				return false, nil, err
			}
			tournament.Status = models.StatusCompleted
		}
		return true, m.WinnerParticipantID, nil
	}
	return false, nil, nil
}
