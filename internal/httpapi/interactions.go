package httpapi

import (
	"net/http"

	"exercisehub/internal/app/interactions"
	"exercisehub/internal/app/ratings"
	"exercisehub/internal/models"
)

type rateRequest struct {
	Rating *int `json:"rating"`
}

// handleToggle flips a favorite or save: 201 with the record when turned on,
// 204 when turned off.
func (s *Server) handleToggle(kind models.InteractionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := requireUser(w, r)
		if user == nil {
			return
		}
		id, err := exerciseID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		res, err := s.interactions.Toggle(r.Context(), user, kind, id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if res.State == interactions.Off {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusCreated, res.Interaction)
	}
}

func (s *Server) handleRemove(kind models.InteractionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := requireUser(w, r)
		if user == nil {
			return
		}
		id, err := exerciseID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.interactions.Remove(r.Context(), user, kind, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRate validates the body before resolving the exercise, so a bad value
// is reported as 400 even for an unknown exercise.
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req rateRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Rating == nil {
		writeError(w, r, ratings.ErrInvalidRating)
		return
	}
	if *req.Rating < models.MinRating || *req.Rating > models.MaxRating {
		writeError(w, r, ratings.ErrInvalidRating)
		return
	}

	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rating, err := s.ratings.Rate(r.Context(), user, id, *req.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

func (s *Server) handleUnrate(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.ratings.Unrate(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
