package matchmaking

import (
	"math"
	"sort"
	"time"

	"github.com/mauv0809/pitchside/internal/roster"
)

// GenerateTeams splits players into two OVR-balanced teams. The heuristic is
// greedy: players are sorted by OVR (descending, stable), goalkeepers are dealt
// alternately, then defenders, midfielders and forwards in that order each go
// to the team with the lower running OVR total unless it already holds perTeam
// players. Ties and the both-full case go to team 1. The input is not modified.
func GenerateTeams(players []RegisteredPlayer, perTeam int, now time.Time) *Teams {
	sorted := append([]RegisteredPlayer(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OVR > sorted[j].OVR
	})

	var goalkeepers, defenders, midfielders, forwards []RegisteredPlayer
	for _, p := range sorted {
		switch p.Position {
		case roster.Goalkeeper:
			goalkeepers = append(goalkeepers, p)
		case roster.Defender:
			defenders = append(defenders, p)
		case roster.Forward:
			forwards = append(forwards, p)
		default:
			midfielders = append(midfielders, p)
		}
	}

	team1 := TeamSide{Name: Team1Name, Players: []RegisteredPlayer{}}
	team2 := TeamSide{Name: Team2Name, Players: []RegisteredPlayer{}}

	for i, gk := range goalkeepers {
		if i%2 == 0 {
			team1.add(gk)
		} else {
			team2.add(gk)
		}
	}

	rest := append(append(defenders, midfielders...), forwards...)
	for _, p := range rest {
		target, other := &team1, &team2
		if team2.TotalOVR < team1.TotalOVR {
			target, other = &team2, &team1
		}
		if len(target.Players) >= perTeam {
			if len(other.Players) < perTeam {
				target = other
			} else {
				target = &team1
			}
		}
		target.add(p)
	}

	team1.AvgOVR = average(team1.TotalOVR, len(team1.Players))
	team2.AvgOVR = average(team2.TotalOVR, len(team2.Players))

	return &Teams{
		Team1:       team1,
		Team2:       team2,
		BalanceDiff: abs(team1.AvgOVR - team2.AvgOVR),
		GeneratedAt: now,
	}
}

func (t *TeamSide) add(p RegisteredPlayer) {
	t.Players = append(t.Players, p)
	t.TotalOVR += p.OVR
}

func average(total, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
