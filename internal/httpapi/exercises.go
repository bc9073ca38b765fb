package httpapi

import (
	"net/http"
	"strconv"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

type createExerciseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Difficulty  int    `json:"difficulty" validate:"gte=1,lte=5"`
	IsPublic    *bool  `json:"isPublic" validate:"required"`
}

type updateExerciseRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Difficulty  *int    `json:"difficulty" validate:"omitnil,gte=1,lte=5"`
	IsPublic    *bool   `json:"isPublic"`
}

type listExercisesQuery struct {
	SortBy    string `json:"sortBy" validate:"omitempty,oneof=createdAt name difficulty"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := listExercisesQuery{SortBy: q.Get("sortBy"), SortOrder: q.Get("sortOrder")}
	if err := s.validate.Validate(query); err != nil {
		writeError(w, r, err)
		return
	}

	filter := models.ExerciseFilter{
		Name:        q.Get("name"),
		Description: q.Get("description"),
		SortBy:      query.SortBy,
		SortOrder:   query.SortOrder,
	}
	if raw := q.Get("difficulty"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperrors.Validation("Difficulty must be between 1 and 5"))
			return
		}
		filter.Difficulty = d
	}

	list, err := s.exercises.List(r.Context(), currentUser(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req createExerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	ex, err := s.exercises.Create(r.Context(), user, models.ExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		IsPublic:    *req.IsPublic,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.exercises.Get(r.Context(), currentUser(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req updateExerciseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.validate.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.exercises.Update(r.Context(), user, id, models.ExerciseUpdate{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.exercises.Delete(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExerciseUsers(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	id, err := exerciseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	users, err := s.exercises.Users(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleInteractedExercises(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	list, err := s.exercises.Interacted(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleFavoriteExercises(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	list, err := s.exercises.Favorites(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatedExercises(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	list, err := s.exercises.Created(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
