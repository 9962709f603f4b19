package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/roster"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		session, err := s.auth.Register(r.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		session, err := s.auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group := r.URL.Query().Get("groupId")
		if group == "" {
			group = s.defaultGroup
		}
		players, err := s.roster.ListPlayers(r.Context(), group)
		if err != nil {
			writeError(w, err)
			return
		}
		if players == nil {
			players = []roster.Player{}
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.roster.GetPlayer(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if p == nil {
			writeError(w, roster.ErrPlayerNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// CreatePlayerHandler adds a roster entry. A player may only be linked to the
// caller's own account.
func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		var p roster.Player
		if err := readJSON(w, r, &p); err != nil {
			writeError(w, err)
			return
		}
		if p.UserID != "" && p.UserID != caller.ID {
			writeError(w, errForbidden)
			return
		}
		if p.GroupID == "" {
			p.GroupID = s.defaultGroup
		}
		created, err := s.roster.CreatePlayer(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := s.editablePlayer(r, id); err != nil {
			writeError(w, err)
			return
		}
		var p roster.Player
		if err := readJSON(w, r, &p); err != nil {
			writeError(w, err)
			return
		}
		p.ID = id
		// Evaluation results are only written by the rating recalculation.
		p.LastEvaluation = nil
		p.EvaluationHistory = nil
		updated, err := s.roster.UpdatePlayer(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeletePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := s.editablePlayer(r, id); err != nil {
			writeError(w, err)
			return
		}
		if err := s.roster.DeletePlayer(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// editablePlayer loads a player the caller may change: their own, or one not
// linked to any account.
func (s *Server) editablePlayer(r *http.Request, id string) (*roster.Player, error) {
	p, err := s.roster.GetPlayer(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, roster.ErrPlayerNotFound
	}
	if p.UserID != "" && p.UserID != identity.FromContext(r.Context()).ID {
		return nil, errForbidden
	}
	return p, nil
}
