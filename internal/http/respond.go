package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/pitchside/internal/auth"
	"github.com/mauv0809/pitchside/internal/docstore"
	"github.com/mauv0809/pitchside/internal/evaluation"
	"github.com/mauv0809/pitchside/internal/identity"
	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/roster"
)

const maxBodyBytes = 2 << 20

var (
	errBadRequest = errors.New("bad request")
	errForbidden  = errors.New("you can only change your own player")
)

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: body must not be empty", errBadRequest)
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body must not be larger than %d bytes", errBadRequest, maxErr.Limit)
		default:
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to write JSON response", "error", err)
	}
}

// writeError maps domain and storage errors to a status code and a JSON body
// of the form {"error": "..."}.
func writeError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "error", err)
	} else {
		log.Debug("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, matchmaking.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage is temporarily unavailable, please try again"
	case errors.Is(err, matchmaking.ErrNotAuthenticated),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, matchmaking.ErrNotOrganizer),
		errors.Is(err, evaluation.ErrNotAssigned),
		errors.Is(err, evaluation.ErrSubjectNotAssigned),
		errors.Is(err, errForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, matchmaking.ErrMatchNotFound),
		errors.Is(err, roster.ErrPlayerNotFound),
		errors.Is(err, errNoTeams):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, matchmaking.ErrCapacityExceeded),
		errors.Is(err, matchmaking.ErrMatchClosed),
		errors.Is(err, matchmaking.ErrNotRegistered),
		errors.Is(err, evaluation.ErrMatchNotFinalized),
		errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, roster.ErrPhotoTooLarge),
		errors.Is(err, docstore.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, errBadRequest),
		errors.Is(err, matchmaking.ErrInvalidMatch),
		errors.Is(err, roster.ErrInvalidPlayer),
		errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, evaluation.ErrEmptyEvaluationSet),
		errors.Is(err, evaluation.ErrInvalidRating):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "the server encountered a problem and could not process your request"
	}
}
