package store

import (
	"context"
	"fmt"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

// ErrRatingNotFound signals there is no rating for the (user, exercise) pair.
var ErrRatingNotFound = apperrors.NotFound("Rating not found")

// UpsertRating creates or replaces the rating of userID on exerciseID.
func (s *Store) UpsertRating(ctx context.Context, userID, exerciseID int64, value int) (models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ratings (user_id, exercise_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, exercise_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
		RETURNING id, user_id, exercise_id, rating, created_at, updated_at
	`, userID, exerciseID, value).Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.Rating, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Rating{}, ErrExerciseNotFound
		}
		return models.Rating{}, fmt.Errorf("upsert rating: %w", err)
	}
	return r, nil
}

// DeleteRating removes the rating of userID on exerciseID.
func (s *Store) DeleteRating(ctx context.Context, userID, exerciseID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE user_id = $1 AND exercise_id = $2
	`, userID, exerciseID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRatingNotFound
	}
	return nil
}
