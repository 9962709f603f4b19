package matchmaking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/pitchside/internal/roster"
)

// The Apply functions are pure: they never modify their input and return a new
// match together with the cascaded effects. Persisting the result is the
// caller's job.

// NewMatch builds a fresh open match. Input must already be validated.
func NewMatch(id string, in CreateInput, organizer Organizer, now time.Time) *Match {
	return &Match{
		ID:                id,
		Title:             strings.TrimSpace(in.Title),
		ScheduledAt:       in.ScheduledAt.UTC(),
		Location:          strings.TrimSpace(in.Location),
		Description:       strings.TrimSpace(in.Description),
		GroupID:           in.GroupID,
		Organizer:         organizer,
		MaxPlayers:        in.MaxPlayers,
		Status:            StatusOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
		RegisteredPlayers: []RegisteredPlayer{},
		PlayerIDs:         []string{},
	}
}

// SnapshotPlayer captures the roster fields a match keeps for a registration.
func SnapshotPlayer(p roster.Player, authenticated bool, now time.Time) RegisteredPlayer {
	return RegisteredPlayer{
		ID:              p.ID,
		Name:            p.Name,
		Position:        p.Position,
		OVR:             p.OVR,
		IsAuthenticated: authenticated,
		RegisteredAt:    now,
	}
}

// ApplyJoin registers p. A full roster returns ErrCapacityExceeded; a player who
// already holds a spot returns ErrAlreadyRegistered with the match unchanged.
// Reaching capacity flips the match to full and generates teams and
// evaluation assignments.
func ApplyJoin(m *Match, p RegisteredPlayer, now time.Time) (*Match, Transition, error) {
	tr := Transition{From: m.Status.Normalize(), To: m.Status.Normalize()}
	if err := CheckJoin(m, p.ID); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return m.Clone(), tr, err
		}
		return nil, tr, err
	}

	next := m.Clone()
	p.RegisteredAt = now
	next.RegisteredPlayers = append(next.RegisteredPlayers, p)
	next.syncPlayerIDs()
	next.UpdatedAt = now
	if len(next.RegisteredPlayers) >= next.MaxPlayers {
		fill(next, now)
		tr.TeamsGenerated = true
	}
	tr.To = next.Status
	return next, tr, nil
}

// CheckJoin reports why playerID could not join m, without changing it.
func CheckJoin(m *Match, playerID string) error {
	if m.Status.IsCompleted() {
		return ErrMatchClosed
	}
	if m.IsRegistered(playerID) {
		return ErrAlreadyRegistered
	}
	if len(m.RegisteredPlayers) >= m.MaxPlayers {
		return ErrCapacityExceeded
	}
	return nil
}

// ApplyLeave removes a registration. Dropping below capacity reopens a full
// match. Generated teams and assignments are left as they were.
func ApplyLeave(m *Match, playerID string, now time.Time) (*Match, Transition, error) {
	tr := Transition{From: m.Status.Normalize(), To: m.Status.Normalize()}
	if m.Status.IsCompleted() {
		return nil, tr, ErrMatchClosed
	}
	idx := m.indexOf(playerID)
	if idx < 0 {
		return m.Clone(), tr, ErrNotRegistered
	}

	next := m.Clone()
	next.RegisteredPlayers = append(next.RegisteredPlayers[:idx], next.RegisteredPlayers[idx+1:]...)
	next.syncPlayerIDs()
	next.UpdatedAt = now
	if next.Status == StatusFull && len(next.RegisteredPlayers) < next.MaxPlayers {
		next.Status = StatusOpen
	}
	tr.To = next.Status
	return next, tr, nil
}

// ApplyInvite adds named guests up to Ceiling. Once the roster is at or above
// capacity, teams and assignments are regenerated from scratch.
func ApplyInvite(m *Match, names []string, newID func() string, now time.Time) (*Match, Transition, error) {
	tr := Transition{From: m.Status.Normalize(), To: m.Status.Normalize()}
	if m.Status.IsCompleted() {
		return nil, tr, ErrMatchClosed
	}
	var cleaned []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return nil, tr, fmt.Errorf("%w: at least one guest name is required", ErrInvalidMatch)
	}
	if len(m.RegisteredPlayers)+len(cleaned) > m.Ceiling() {
		return nil, tr, fmt.Errorf("%w: %d spots left including substitutes", ErrCapacityExceeded, m.Ceiling()-len(m.RegisteredPlayers))
	}

	next := m.Clone()
	for _, name := range cleaned {
		next.RegisteredPlayers = append(next.RegisteredPlayers, RegisteredPlayer{
			ID:           newID(),
			Name:         name,
			Position:     roster.Midfielder,
			OVR:          GuestOVR,
			IsGuest:      true,
			RegisteredAt: now,
		})
	}
	next.syncPlayerIDs()
	next.UpdatedAt = now
	if len(next.RegisteredPlayers) >= next.MaxPlayers {
		fill(next, now)
		tr.TeamsGenerated = true
	}
	tr.To = next.Status
	return next, tr, nil
}

// ApplyFinalize completes the match, which opens evaluation. Only the
// organizer may finalize; finalizing twice is a no-op.
func ApplyFinalize(m *Match, actorID string, now time.Time) (*Match, Transition, error) {
	tr := Transition{From: m.Status.Normalize(), To: m.Status.Normalize()}
	if !m.IsOrganizer(actorID) {
		return nil, tr, ErrNotOrganizer
	}
	next := m.Clone()
	if m.Status.IsCompleted() {
		next.Status = StatusCompleted
		return next, tr, nil
	}
	next.Status = StatusCompleted
	next.FinalizedAt = &now
	next.FinalizedBy = actorID
	next.UpdatedAt = now
	tr.To = StatusCompleted
	tr.Finalized = true
	return next, tr, nil
}

func fill(m *Match, now time.Time) {
	m.Status = StatusFull
	m.Teams = GenerateTeams(m.RegisteredPlayers, PlayersPerTeam, now)
	m.EvaluationAssignments = AssignEvaluations(m.RegisteredPlayers)
}
