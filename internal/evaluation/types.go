package evaluation

import (
	"errors"
	"time"

	"github.com/mauv0809/pitchside/internal/matchmaking"
)

const (
	MinRating     = 1
	MaxRating     = 10
	NeutralRating = 5
	// OVR points gained or lost per rating point away from NeutralRating.
	pointsPerRating = 2
	// Recalculation runs once thresholdNum/thresholdDen of the assigned
	// evaluators have submitted.
	thresholdNum = 4
	thresholdDen = 5
)

var (
	ErrNotAssigned        = errors.New("you have no evaluations assigned for this match")
	ErrEmptyEvaluationSet = errors.New("no evaluations submitted")
	ErrSubjectNotAssigned = errors.New("player is not one of your assigned evaluations")
	ErrInvalidRating      = errors.New("rating must be between 1 and 10")
	ErrMatchNotFinalized  = errors.New("match has not been finalized yet")
)

// Input is one rating given by an evaluator.
type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Delta is the OVR change derived for one subject.
type Delta struct {
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	AvgRating    float64 `json:"avgRating"`
	RatingsCount int     `json:"ratingsCount"`
	OVRChange    int     `json:"ovrChange"`
	PreviousOVR  int     `json:"previousOvr"`
	NewOVR       int     `json:"newOvr"`
}

// Outcome reports the threshold check that follows every submission.
type Outcome struct {
	Submitted int     `json:"submitted"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
	Applied   bool    `json:"applied"`
	Deltas    []Delta `json:"deltas,omitempty"`
}

// Pending is a finalized match the user still has to evaluate.
type Pending struct {
	MatchID     string                        `json:"matchId"`
	Title       string                        `json:"title"`
	ScheduledAt time.Time                     `json:"scheduledAt"`
	Subjects    []matchmaking.AssignedSubject `json:"subjects"`
}
