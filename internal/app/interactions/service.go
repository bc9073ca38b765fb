// Package interactions implements the favorite and save toggles.
package interactions

import (
	"context"
	"errors"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
	"exercisehub/internal/store"
)

// Store defines persistence operations required for interaction workflows.
type Store interface {
	ExerciseByID(ctx context.Context, id int64) (models.Exercise, error)
	FindInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error)
	CreateInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error)
	DeleteInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) error
}

// State is the outcome of a toggle.
type State int

const (
	Off State = iota
	On
)

func (s State) String() string {
	if s == On {
		return "on"
	}
	return "off"
}

// Result is returned by Toggle. Interaction is set only when State is On.
type Result struct {
	State       State
	Interaction *models.Interaction
}

// Service describes the favorite and save operations used by HTTP handlers.
type Service interface {
	Toggle(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) (Result, error)
	Remove(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) error
}

type service struct {
	store Store
}

// New constructs an interactions Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Toggle flips the actor's favorite or save on an exercise. Any authenticated
// user may toggle any existing exercise, public or not.
func (s *service) Toggle(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if actor == nil {
		return Result{}, apperrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return Result{}, store.ErrInvalidInteractionKind
	}

	if _, err := s.store.ExerciseByID(ctx, exerciseID); err != nil {
		return Result{}, err
	}

	_, err := s.store.FindInteraction(ctx, kind, actor.ID, exerciseID)
	switch {
	case err == nil:
		return s.off(ctx, actor.ID, kind, exerciseID)
	case !errors.Is(err, apperrors.ErrNotFound):
		return Result{}, err
	}

	in, err := s.store.CreateInteraction(ctx, kind, actor.ID, exerciseID)
	if errors.Is(err, store.ErrInteractionExists) {
		// A concurrent toggle created the row first; treat this one as the second press.
		return s.off(ctx, actor.ID, kind, exerciseID)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{State: On, Interaction: &in}, nil
}

func (s *service) off(ctx context.Context, userID int64, kind models.InteractionKind, exerciseID int64) (Result, error) {
	err := s.store.DeleteInteraction(ctx, kind, userID, exerciseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return Result{}, err
	}
	return Result{State: Off}, nil
}

// Remove deletes the actor's favorite or save. A missing row is a not-found error.
func (s *service) Remove(ctx context.Context, actor *models.SessionUser, kind models.InteractionKind, exerciseID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return store.ErrInvalidInteractionKind
	}
	return s.store.DeleteInteraction(ctx, kind, actor.ID, exerciseID)
}
