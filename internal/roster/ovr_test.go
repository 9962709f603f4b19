package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOVR(t *testing.T) {
	flat := func(v int) Attributes {
		return Attributes{Pace: v, Shooting: v, Passing: v, Dribbling: v, Defense: v, Physical: v}
	}
	tests := []struct {
		name  string
		pos   Position
		attrs Attributes
		want  int
	}{
		{"flat 50 midfielder", Midfielder, flat(50), 50},
		{"flat 99 forward", Forward, flat(99), 99},
		{"flat 1 defender", Defender, flat(1), 1},
		{"striker profile", Forward, Attributes{Pace: 80, Shooting: 90, Passing: 60, Dribbling: 80, Defense: 30, Physical: 70}, 78},
		{"same profile as defender", Defender, Attributes{Pace: 80, Shooting: 90, Passing: 60, Dribbling: 80, Defense: 30, Physical: 70}, 58},
		{"unknown position uses mean", Position("Libero"), Attributes{Pace: 60, Shooting: 60, Passing: 60, Dribbling: 60, Defense: 90, Physical: 90}, 70},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeOVR(tc.pos, tc.attrs))
		})
	}
}

func TestClampOVR(t *testing.T) {
	assert.Equal(t, 1, ClampOVR(-5))
	assert.Equal(t, 1, ClampOVR(0))
	assert.Equal(t, 50, ClampOVR(50))
	assert.Equal(t, 99, ClampOVR(120))
}
