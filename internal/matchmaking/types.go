package matchmaking

import (
	"errors"
	"time"

	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/roster"
)

const matchesCollection = "matches"

const (
	DefaultMaxPlayers = 10
	// SubstituteAllowance is how many invited guests may exceed MaxPlayers.
	SubstituteAllowance = 4
	// GuestOVR is the rating snapshot given to invited guests.
	GuestOVR = 50
	// PlayersPerTeam caps each side during team generation. Once both sides
	// hold this many, the remaining players go to team 1.
	PlayersPerTeam = 5
)

const (
	Team1Name = "Team 1"
	Team2Name = "Team 2"
)

var (
	ErrNotAuthenticated  = errors.New("you must be signed in to do that")
	ErrMatchNotFound     = errors.New("match not found")
	ErrCapacityExceeded  = errors.New("match is full")
	ErrAlreadyRegistered = errors.New("player already registered")
	ErrNotRegistered     = errors.New("player is not registered for this match")
	ErrNotOrganizer      = errors.New("only the organizer can do that")
	ErrMatchClosed       = errors.New("match is already completed")
	ErrInvalidMatch      = errors.New("invalid match")
	// ErrStorageUnavailable is the document store's failure sentinel, so
	// errors.Is matches failures from any layer.
	ErrStorageUnavailable = docstore.ErrUnavailable
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusFull      Status = "full"
	StatusCompleted Status = "completed"
	// StatusFinished is an older spelling of StatusCompleted.
	StatusFinished Status = "finished"
)

// Normalize folds aliases into their canonical status.
func (s Status) Normalize() Status {
	if s == StatusFinished {
		return StatusCompleted
	}
	return s
}

func (s Status) IsCompleted() bool {
	return s.Normalize() == StatusCompleted
}

type Organizer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisteredPlayer is a snapshot of a player taken when they joined.
type RegisteredPlayer struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Position        roster.Position `json:"position"`
	OVR             int             `json:"ovr"`
	IsGuest         bool            `json:"isGuest"`
	IsAuthenticated bool            `json:"isAuthenticated"`
	RegisteredAt    time.Time       `json:"registeredAt"`
}

type TeamSide struct {
	Name     string             `json:"name"`
	Players  []RegisteredPlayer `json:"players"`
	TotalOVR int                `json:"totalOvr"`
	AvgOVR   int                `json:"avgOvr"`
}

type Teams struct {
	Team1       TeamSide  `json:"team1"`
	Team2       TeamSide  `json:"team2"`
	BalanceDiff int       `json:"balanceDiff"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// AssignedSubject is a peer an evaluator must rate.
type AssignedSubject struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Position roster.Position `json:"position"`
}

type SubmittedEvaluation struct {
	SubjectID     string    `json:"subjectId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	EvaluatorID   string    `json:"evaluatorId"`
	EvaluatorName string    `json:"evaluatorName"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

type Match struct {
	ID                     string                           `json:"id"`
	Title                  string                           `json:"title"`
	ScheduledAt            time.Time                        `json:"scheduledAt"`
	Location               string                           `json:"location"`
	Description            string                           `json:"description"`
	GroupID                string                           `json:"groupId"`
	Organizer              Organizer                        `json:"organizer"`
	MaxPlayers             int                              `json:"maxPlayers"`
	Status                 Status                           `json:"status"`
	CreatedAt              time.Time                        `json:"createdAt"`
	UpdatedAt              time.Time                        `json:"updatedAt"`
	RegisteredPlayers      []RegisteredPlayer               `json:"registeredPlayers"`
	PlayerIDs              []string                         `json:"playerIds"`
	Teams                  *Teams                           `json:"teams,omitempty"`
	EvaluationAssignments  map[string][]AssignedSubject     `json:"evaluationAssignments,omitempty"`
	SubmittedEvaluations   map[string][]SubmittedEvaluation `json:"submittedEvaluations,omitempty"`
	FinalizedAt            *time.Time                       `json:"finalizedAt,omitempty"`
	FinalizedBy            string                           `json:"finalizedBy,omitempty"`
	EvaluationsComplete    bool                             `json:"evaluationsComplete"`
	EvaluationsCompletedAt *time.Time                       `json:"evaluationsCompletedAt,omitempty"`
}

// CreateInput is what an organizer supplies for a new match.
type CreateInput struct {
	Title       string    `json:"title" validate:"required,max=120"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Location    string    `json:"location" validate:"max=200"`
	Description string    `json:"description" validate:"max=2000"`
	MaxPlayers  int       `json:"maxPlayers" validate:"min=2,max=40"`
	GroupID     string    `json:"groupId"`
}

// Transition describes the cascaded effects of a pure state change.
type Transition struct {
	From           Status
	To             Status
	TeamsGenerated bool
	Finalized      bool
}

// StatusChanged reports whether the transition moved the match to a new status.
func (t Transition) StatusChanged() bool {
	return t.From != t.To
}
