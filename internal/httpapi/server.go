package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"exercisehub/internal/app/interactions"
	"exercisehub/internal/apperrors"
	"exercisehub/internal/http/middleware"
	"exercisehub/internal/logging"
	"exercisehub/internal/models"
	"exercisehub/internal/ratelimit"
	"exercisehub/internal/validation"
)

const maxBodyBytes = 1 << 20

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// ExerciseService exposes the exercise catalog.
type ExerciseService interface {
	Create(ctx context.Context, actor *models.SessionUser, input models.ExerciseInput) (models.Exercise, error)
	List(ctx context.Context, viewer *models.SessionUser, filter models.ExerciseFilter) ([]models.ExerciseSummary, error)
	Get(ctx context.Context, viewer *models.SessionUser, id int64) (models.ExerciseDetail, error)
	Update(ctx context.Context, actor *models.SessionUser, id int64, upd models.ExerciseUpdate) (models.ExerciseDetail, error)
	Delete(ctx context.Context, actor *models.SessionUser, id int64) error
	Users(ctx context.Context, actor *models.SessionUser, id int64) ([]models.ExerciseUser, error)
	Interacted(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseDetail, error)
	Favorites(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseSummary, error)
	Created(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseSummary, error)
}

// InteractionService coordinates favorite and save toggles.
type InteractionService interface {
	Toggle(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) (interactions.Result, error)
	Remove(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) error
}

// RatingService describes rating workflows.
type RatingService interface {
	Rate(ctx context.Context, actor *models.SessionUser, exerciseID int64, value int) (models.Rating, error)
	Unrate(ctx context.Context, actor *models.SessionUser, exerciseID int64) error
}

// SessionResolver maps requests to users and manages session lifetimes.
type SessionResolver interface {
	Resolve(r *http.Request) (*models.SessionUser, error)
	Start(w http.ResponseWriter, r *http.Request, user models.SessionUser) (string, error)
	End(w http.ResponseWriter, r *http.Request) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users        UserService
	exercises    ExerciseService
	interactions InteractionService
	ratings      RatingService
	sessions     SessionResolver
	authLimiter  *ratelimit.KeyedRateLimiter
	validate     *validation.Validator
}

// New configures a Server. authLimiter throttles register and login; nil leaves them unlimited.
func New(
	users UserService,
	exercises ExerciseService,
	toggles InteractionService,
	ratings RatingService,
	sessions SessionResolver,
	authLimiter *ratelimit.KeyedRateLimiter,
) *Server {
	return &Server{
		users:        users,
		exercises:    exercises,
		interactions: toggles,
		ratings:      ratings,
		sessions:     sessions,
		authLimiter:  authLimiter,
		validate:     validation.New(),
	}
}

// Routes exposes the HTTP handlers under /api plus /health.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging())
	r.Use(middleware.Recovery())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.attachSession)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.authLimiter != nil {
					r.Use(middleware.RateLimit(s.authLimiter))
				}
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
			})
			r.Post("/logout", s.handleLogout)
			r.Get("/session", s.handleSession)
		})

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Get("/my", s.handleInteractedExercises)
			r.Get("/favorites", s.handleFavoriteExercises)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetExercise)
				r.Patch("/", s.handleUpdateExercise)
				r.Delete("/", s.handleDeleteExercise)
				r.Get("/users", s.handleExerciseUsers)

				r.Post("/favorite", s.handleToggle(models.KindFavorite))
				r.Delete("/favorite", s.handleRemove(models.KindFavorite))
				r.Post("/save", s.handleToggle(models.KindSave))
				r.Delete("/save", s.handleRemove(models.KindSave))
				r.Post("/rate", s.handleRate)
				r.Delete("/rate", s.handleUnrate)
			})
		})

		r.Get("/user/exercises", s.handleCreatedExercises)
	})

	return r
}

type contextKey struct{}

var sessionUserKey contextKey

// attachSession resolves the caller once per request. Anonymous requests pass
// through; handlers that need a user call requireUser.
func (s *Server) attachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessions.Resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if user != nil {
			ctx := context.WithValue(r.Context(), sessionUserKey, user)
			ctx = logging.WithUserID(ctx, user.ID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *models.SessionUser {
	user, _ := r.Context().Value(sessionUserKey).(*models.SessionUser)
	return user
}

// requireUser writes a 401 and returns nil when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) *models.SessionUser {
	user := currentUser(r)
	if user == nil {
		writeError(w, r, apperrors.ErrUnauthorized)
	}
	return user
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

var errInvalidJSON = apperrors.Validation("invalid JSON payload")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON.WithCause(err)
	}
	return nil
}

// exerciseID parses the {id} path parameter. An unparsable id cannot name an
// existing exercise, so it reports the same not-found error as a missing one.
func exerciseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NotFound("Exercise not found")
	}
	return id, nil
}

// writeError maps err onto the error taxonomy. Uncategorized and 5xx errors
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.HTTPStatus() >= http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: apperrors.ErrInternal.Message})
		return
	}

	writeJSON(w, appErr.HTTPStatus(), errorResponse{Error: appErr.Message, Details: appErr.Details})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
