package roster

import (
	"errors"
	"time"
)

const playersCollection = "players"

// MaxPhotoBytes caps the encoded photo so a player document stays well under
// the store's per-document limit.
const MaxPhotoBytes = 800 * 1024

const defaultAttribute = 50

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidPlayer  = errors.New("invalid player")
	ErrPhotoTooLarge  = errors.New("photo exceeds 800KB")
)

type Position string

const (
	Goalkeeper Position = "Goalkeeper"
	Defender   Position = "Defender"
	Midfielder Position = "Midfielder"
	Forward    Position = "Forward"
)

// Attributes are the six sub-ratings an OVR is derived from.
type Attributes struct {
	Pace      int `json:"pace" validate:"min=1,max=99"`
	Shooting  int `json:"shooting" validate:"min=1,max=99"`
	Passing   int `json:"passing" validate:"min=1,max=99"`
	Dribbling int `json:"dribbling" validate:"min=1,max=99"`
	Defense   int `json:"defense" validate:"min=1,max=99"`
	Physical  int `json:"physical" validate:"min=1,max=99"`
}

// EvaluationRecord is the outcome of one match's peer evaluations applied to a
// player. PreviousOVR is the rating the change was applied to.
type EvaluationRecord struct {
	MatchID      string    `json:"matchId"`
	AvgRating    float64   `json:"avgRating"`
	RatingsCount int       `json:"ratingsCount"`
	OVRChange    int       `json:"ovrChange"`
	PreviousOVR  int       `json:"previousOvr"`
	NewOVR       int       `json:"newOvr"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Player struct {
	ID             string            `json:"id"`
	Name           string            `json:"name" validate:"required,max=80"`
	NameKey        string            `json:"nameKey"`
	Position       Position          `json:"position" validate:"oneof=Goalkeeper Defender Midfielder Forward"`
	OVR            int               `json:"ovr"`
	Attributes     Attributes        `json:"attributes"`
	Photo          string            `json:"photo,omitempty"`
	UserID         string            `json:"userId,omitempty"`
	GroupID        string            `json:"groupId" validate:"required"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	LastEvaluation *EvaluationRecord `json:"lastEvaluation,omitempty"`
	// EvaluationHistory holds the record applied for each match, keyed by match id.
	EvaluationHistory map[string]EvaluationRecord `json:"evaluationHistory,omitempty"`
}

// AppliedChange returns how much a match's evaluations moved this player's
// OVR, or 0 if none were applied.
func (p Player) AppliedChange(matchID string) int {
	rec, ok := p.EvaluationHistory[matchID]
	if !ok {
		return 0
	}
	return rec.NewOVR - rec.PreviousOVR
}

// DefaultAttributes is the profile given to players created without ratings.
func DefaultAttributes() Attributes {
	return Attributes{
		Pace:      defaultAttribute,
		Shooting:  defaultAttribute,
		Passing:   defaultAttribute,
		Dribbling: defaultAttribute,
		Defense:   defaultAttribute,
		Physical:  defaultAttribute,
	}
}
