// Package exercises implements the exercise catalog and its permission rules.
package exercises

import (
	"context"
	"strings"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

var (
	// ErrPrivateExercise hides a private exercise from everyone but its creator.
	ErrPrivateExercise = apperrors.Forbidden("This exercise is private")
	// ErrEditForbidden is returned when the actor may not modify the exercise.
	ErrEditForbidden = apperrors.Forbidden("You are not allowed to modify this exercise")
	// ErrDeleteForbidden is returned when a non-creator tries to delete.
	ErrDeleteForbidden = apperrors.Forbidden("Only the creator can delete this exercise")
)

// Store defines the persistence operations the catalog needs.
type Store interface {
	CreateExercise(ctx context.Context, creatorID int64, input models.ExerciseInput) (models.Exercise, error)
	ExerciseByID(ctx context.Context, id int64) (models.Exercise, error)
	ExerciseDetail(ctx context.Context, id, viewerID int64) (models.ExerciseDetail, error)
	UpdateExercise(ctx context.Context, id int64, upd models.ExerciseUpdate) (models.Exercise, error)
	DeleteExercise(ctx context.Context, id int64) error
	ListExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.ExerciseSummary, error)
	ExercisesByCreator(ctx context.Context, userID int64) ([]models.ExerciseSummary, error)
	FavoriteExercises(ctx context.Context, userID int64) ([]models.ExerciseSummary, error)
	InteractedExercises(ctx context.Context, userID int64) ([]models.ExerciseDetail, error)
	ExerciseUsers(ctx context.Context, exerciseID int64) ([]models.ExerciseUser, error)
}

// Service describes the exercise operations used by HTTP handlers.
type Service interface {
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

type service struct {
	store Store
}

// New constructs an exercises Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, actor *models.SessionUser, input models.ExerciseInput) (models.Exercise, error) {
	if err := ctx.Err(); err != nil {
		return models.Exercise{}, err
	}
	if actor == nil {
		return models.Exercise{}, apperrors.ErrUnauthorized
	}
	if err := validateInput(input.Name, input.Description, input.Difficulty); err != nil {
		return models.Exercise{}, err
	}
	return s.store.CreateExercise(ctx, actor.ID, input)
}

func (s *service) List(ctx context.Context, viewer *models.SessionUser, filter models.ExerciseFilter) ([]models.ExerciseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch filter.SortBy {
	case "", models.SortByCreatedAt, models.SortByName, models.SortByDifficulty:
	default:
		return nil, apperrors.Validation("sortBy must be one of createdAt, name, difficulty")
	}
	switch filter.SortOrder {
	case "", models.SortAsc, models.SortDesc:
	default:
		return nil, apperrors.Validation("sortOrder must be asc or desc")
	}
	if filter.Difficulty != 0 && !validDifficulty(filter.Difficulty) {
		return nil, apperrors.Validation("Difficulty must be between 1 and 5")
	}

	filter.ViewerID = 0
	if viewer != nil {
		filter.ViewerID = viewer.ID
	}
	return s.store.ListExercises(ctx, filter)
}

// Get returns an exercise with the viewer's interactions. Anonymous viewers
// see public exercises only.
func (s *service) Get(ctx context.Context, viewer *models.SessionUser, id int64) (models.ExerciseDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.ExerciseDetail{}, err
	}

	var viewerID int64
	if viewer != nil {
		viewerID = viewer.ID
	}

	detail, err := s.store.ExerciseDetail(ctx, id, viewerID)
	if err != nil {
		return models.ExerciseDetail{}, err
	}
	if !detail.IsPublic && (viewer == nil || detail.CreatorID != viewer.ID) {
		return models.ExerciseDetail{}, ErrPrivateExercise
	}
	return detail, nil
}

func (s *service) Update(ctx context.Context, actor *models.SessionUser, id int64, upd models.ExerciseUpdate) (models.ExerciseDetail, error) {
	if err := ctx.Err(); err != nil {
		return models.ExerciseDetail{}, err
	}
	if actor == nil {
		return models.ExerciseDetail{}, apperrors.ErrUnauthorized
	}

	ex, err := s.store.ExerciseByID(ctx, id)
	if err != nil {
		return models.ExerciseDetail{}, err
	}
	if !ex.CanMutate(actor.ID) {
		return models.ExerciseDetail{}, ErrEditForbidden
	}

	if upd.Empty() {
		return s.store.ExerciseDetail(ctx, id, actor.ID)
	}

	name, description, difficulty := ex.Name, ex.Description, ex.Difficulty
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Description != nil {
		description = *upd.Description
	}
	if upd.Difficulty != nil {
		difficulty = *upd.Difficulty
	}
	if err := validateInput(name, description, difficulty); err != nil {
		return models.ExerciseDetail{}, err
	}

	if _, err := s.store.UpdateExercise(ctx, id, upd); err != nil {
		return models.ExerciseDetail{}, err
	}
	return s.store.ExerciseDetail(ctx, id, actor.ID)
}

func (s *service) Delete(ctx context.Context, actor *models.SessionUser, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actor == nil {
		return apperrors.ErrUnauthorized
	}

	ex, err := s.store.ExerciseByID(ctx, id)
	if err != nil {
		return err
	}
	if !ex.CanDelete(actor.ID) {
		return ErrDeleteForbidden
	}
	return s.store.DeleteExercise(ctx, id)
}

// Users lists who favorited or saved the exercise.
func (s *service) Users(ctx context.Context, actor *models.SessionUser, id int64) ([]models.ExerciseUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	ex, err := s.store.ExerciseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ex.CanMutate(actor.ID) {
		return nil, ErrPrivateExercise
	}
	return s.store.ExerciseUsers(ctx, id)
}

func (s *service) Interacted(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.InteractedExercises(ctx, actor.ID)
}

func (s *service) Favorites(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.FavoriteExercises(ctx, actor.ID)
}

func (s *service) Created(ctx context.Context, actor *models.SessionUser) ([]models.ExerciseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.store.ExercisesByCreator(ctx, actor.ID)
}

func validateInput(name, description string, difficulty int) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Validation("Name is required")
	}
	if strings.TrimSpace(description) == "" {
		return apperrors.Validation("Description is required")
	}
	if !validDifficulty(difficulty) {
		return apperrors.Validation("Difficulty must be between 1 and 5")
	}
	return nil
}

func validDifficulty(d int) bool {
	return d >= 1 && d <= 5
}
