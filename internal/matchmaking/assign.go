package matchmaking

import "sort"

// AssignEvaluations gives every player (as evaluator) two peers to rate.
// Players are visited in registration order; each picks the two others that
// have been assigned least so far, ties broken by registration order. With
// fewer than three players each evaluator gets everyone else.
func AssignEvaluations(players []RegisteredPlayer) map[string][]AssignedSubject {
	assignments := make(map[string][]AssignedSubject, len(players))
	timesAssigned := make(map[string]int, len(players))

	for _, evaluator := range players {
		candidates := make([]RegisteredPlayer, 0, len(players)-1)
		for _, p := range players {
			if p.ID != evaluator.ID {
				candidates = append(candidates, p)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return timesAssigned[candidates[i].ID] < timesAssigned[candidates[j].ID]
		})

		n := min(2, len(candidates))
		subjects := make([]AssignedSubject, 0, n)
		for _, c := range candidates[:n] {
			subjects = append(subjects, AssignedSubject{ID: c.ID, Name: c.Name, Position: c.Position})
			timesAssigned[c.ID]++
		}
		assignments[evaluator.ID] = subjects
	}
	return assignments
}
