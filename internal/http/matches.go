package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/live"
	"github.com/mauv0809/pitchside/internal/matchmaking"
)

var errNoTeams = errors.New("teams have not been generated yet")

func (s *Server) ListOpenMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.matches.ListOpenMatches(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ListMyMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.matches.ListUserMatches(r.Context(), identity.FromContext(r.Context()).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.matches.GetMatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if m == nil {
			writeError(w, matchmaking.ErrMatchNotFound)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) GetTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.matches.GetTeams(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if teams == nil {
			writeError(w, errNoTeams)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in matchmaking.CreateInput
		if err := readJSON(w, r, &in); err != nil {
			writeError(w, err)
			return
		}
		if in.GroupID == "" {
			in.GroupID = s.defaultGroup
		}
		m, err := s.matches.Create(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

// mutate runs one of the match actions that return the updated match and
// pushes the result to live subscribers.
func (s *Server) mutate(action func(r *http.Request, matchID string) (*matchmaking.Match, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "id")
		m, err := action(r, matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		s.broadcast(matchID, live.MessageMatchUpdated, m)
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) JoinMatchHandler() http.HandlerFunc {
	return s.mutate(func(r *http.Request, matchID string) (*matchmaking.Match, error) {
		return s.matches.Join(r.Context(), matchID)
	})
}

func (s *Server) LeaveMatchHandler() http.HandlerFunc {
	return s.mutate(func(r *http.Request, matchID string) (*matchmaking.Match, error) {
		return s.matches.Leave(r.Context(), matchID)
	})
}

func (s *Server) FinalizeMatchHandler() http.HandlerFunc {
	return s.mutate(func(r *http.Request, matchID string) (*matchmaking.Match, error) {
		return s.matches.Finalize(r.Context(), matchID)
	})
}

func (s *Server) InviteGuestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inviteRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		s.mutate(func(r *http.Request, matchID string) (*matchmaking.Match, error) {
			return s.matches.InviteGuests(r.Context(), matchID, req.Names)
		})(w, r)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "id")
		if err := s.matches.Delete(r.Context(), matchID); err != nil {
			writeError(w, err)
			return
		}
		s.broadcast(matchID, live.MessageMatchDeleted, map[string]string{"id": matchID})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) SubmitEvaluationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "id")
		var req submitEvaluationsRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		caller := identity.FromContext(r.Context())
		outcome, err := s.evaluations.Submit(r.Context(), matchID, caller.ID, req.Evaluations)
		if err != nil {
			writeError(w, err)
			return
		}
		if m, err := s.matches.GetMatch(r.Context(), matchID); err == nil && m != nil {
			s.broadcast(matchID, live.MessageMatchUpdated, m)
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

func (s *Server) CanEvaluateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.evaluations.CanEvaluate(r.Context(), chi.URLParam(r, "id"), identity.FromContext(r.Context()).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"canEvaluate": ok})
	}
}

func (s *Server) PendingEvaluationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := s.evaluations.PendingEvaluations(r.Context(), identity.FromContext(r.Context()).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pending)
	}
}

// LiveMatchHandler upgrades to a websocket that receives every change to the match.
func (s *Server) LiveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := chi.URLParam(r, "id")
		m, err := s.matches.GetMatch(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		if m == nil {
			writeError(w, matchmaking.ErrMatchNotFound)
			return
		}
		s.hub.ServeWS(w, r, matchID)
	}
}
