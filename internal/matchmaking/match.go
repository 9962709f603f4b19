package matchmaking

// Clone returns a deep copy so callers can never mutate cached or shared state.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.RegisteredPlayers = append([]RegisteredPlayer(nil), m.RegisteredPlayers...)
	c.PlayerIDs = append([]string(nil), m.PlayerIDs...)
	if m.Teams != nil {
		t := m.Teams.clone()
		c.Teams = &t
	}
	if m.EvaluationAssignments != nil {
		c.EvaluationAssignments = make(map[string][]AssignedSubject, len(m.EvaluationAssignments))
		for k, v := range m.EvaluationAssignments {
			c.EvaluationAssignments[k] = append([]AssignedSubject(nil), v...)
		}
	}
	if m.SubmittedEvaluations != nil {
		c.SubmittedEvaluations = make(map[string][]SubmittedEvaluation, len(m.SubmittedEvaluations))
		for k, v := range m.SubmittedEvaluations {
			c.SubmittedEvaluations[k] = append([]SubmittedEvaluation(nil), v...)
		}
	}
	if m.FinalizedAt != nil {
		at := *m.FinalizedAt
		c.FinalizedAt = &at
	}
	if m.EvaluationsCompletedAt != nil {
		at := *m.EvaluationsCompletedAt
		c.EvaluationsCompletedAt = &at
	}
	return &c
}

func (t Teams) clone() Teams {
	t.Team1.Players = append([]RegisteredPlayer(nil), t.Team1.Players...)
	t.Team2.Players = append([]RegisteredPlayer(nil), t.Team2.Players...)
	return t
}

// IsRegistered reports whether a player with the given id holds a spot.
func (m *Match) IsRegistered(playerID string) bool {
	return m.indexOf(playerID) >= 0
}

func (m *Match) IsOrganizer(userID string) bool {
	return userID != "" && m.Organizer.ID == userID
}

// Ceiling is the absolute roster size organizer invites may reach.
func (m *Match) Ceiling() int {
	return m.MaxPlayers + SubstituteAllowance
}

func (m *Match) indexOf(playerID string) int {
	for i, p := range m.RegisteredPlayers {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (m *Match) syncPlayerIDs() {
	ids := make([]string, len(m.RegisteredPlayers))
	for i, p := range m.RegisteredPlayers {
		ids[i] = p.ID
	}
	m.PlayerIDs = ids
}
