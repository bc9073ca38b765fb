package ratings

import (
	"context"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

var (
	// ErrInvalidRating rejects values outside [models.MinRating, models.MaxRating].
	ErrInvalidRating = apperrors.Validation("Invalid rating value")
	// ErrPrivateExercise is returned when rating someone else's private exercise.
	ErrPrivateExercise = apperrors.Forbidden("Cannot rate private exercises")
)

// Store defines the persistence hooks for ratings workflows.
type Store interface {
	ExerciseByID(ctx context.Context, id int64) (models.Exercise, error)
	UpsertRating(ctx context.Context, userID, exerciseID int64, value int) (models.Rating, error)
	DeleteRating(ctx context.Context, userID, exerciseID int64) error
}

// Service coordinates rating updates.
type Service interface {
	Rate(ctx context.Context, actor *models.SessionUser, exerciseID int64, value int) (models.Rating, error)
	Unrate(ctx context.Context, actor *models.SessionUser, exerciseID int64) error
}

type service struct {
	store Store
}

// New constructs a ratings Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

// Rate records or replaces the actor's rating. The value is checked before
// the exercise is looked up.
func (s *service) Rate(ctx context.Context, actor *models.SessionUser, exerciseID int64, value int) (models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return models.Rating{}, err
	}
	if actor == nil {
		return models.Rating{}, apperrors.ErrUnauthorized
	}
	if value < models.MinRating || value > models.MaxRating {
		return models.Rating{}, ErrInvalidRating
	}

	ex, err := s.store.ExerciseByID(ctx, exerciseID)
	if err != nil {
		return models.Rating{}, err
	}
	if !ex.CanMutate(actor.ID) {
		return models.Rating{}, ErrPrivateExercise
	}

	return s.store.UpsertRating(ctx, actor.ID, exerciseID, value)
}

// Unrate removes the actor's rating.
func (s *service) Unrate(ctx context.Context, actor *models.SessionUser, exerciseID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	return s.store.DeleteRating(ctx, actor.ID, exerciseID)
}
