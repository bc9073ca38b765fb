package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

var (
	// ErrFavoriteNotFound signals there is no favorite for the (user, exercise) pair.
	ErrFavoriteNotFound = apperrors.NotFound("Favorite not found")
	// ErrSaveNotFound signals there is no save for the (user, exercise) pair.
	ErrSaveNotFound = apperrors.NotFound("Save not found")
	// ErrInteractionExists is returned when a concurrent request already created the row.
	ErrInteractionExists = apperrors.Conflict("Interaction already exists")
	// ErrInvalidInteractionKind rejects kinds other than favorite and save.
	ErrInvalidInteractionKind = apperrors.Validation("Unknown interaction kind")
)

var interactionTables = map[models.InteractionKind]string{
	models.KindFavorite: "favorites",
	models.KindSave:     "saves",
}

func interactionTable(kind models.InteractionKind) (string, error) {
	table, ok := interactionTables[kind]
	if !ok {
		return "", ErrInvalidInteractionKind
	}
	return table, nil
}

func interactionNotFound(kind models.InteractionKind) error {
	if kind == models.KindSave {
		return ErrSaveNotFound
	}
	return ErrFavoriteNotFound
}

// FindInteraction returns the favorite or save of userID on exerciseID.
func (s *Store) FindInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error) {
	table, err := interactionTable(kind)
	if err != nil {
		return models.Interaction{}, err
	}

	in := models.Interaction{Kind: kind}
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, exercise_id, created_at
		FROM %s
		WHERE user_id = $1 AND exercise_id = $2
	`, table), userID, exerciseID).Scan(&in.ID, &in.UserID, &in.ExerciseID, &in.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Interaction{}, interactionNotFound(kind)
		}
		return models.Interaction{}, fmt.Errorf("select %s: %w", kind, err)
	}
	return in, nil
}

// CreateInteraction inserts a favorite or save. The (user_id, exercise_id)
// unique constraint turns a lost race into ErrInteractionExists.
func (s *Store) CreateInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error) {
	table, err := interactionTable(kind)
	if err != nil {
		return models.Interaction{}, err
	}

	in := models.Interaction{Kind: kind}
	err = s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (user_id, exercise_id)
		VALUES ($1, $2)
		RETURNING id, user_id, exercise_id, created_at
	`, table), userID, exerciseID).Scan(&in.ID, &in.UserID, &in.ExerciseID, &in.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return models.Interaction{}, ErrInteractionExists
		case isForeignKeyViolation(err):
			return models.Interaction{}, ErrExerciseNotFound
		}
		return models.Interaction{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	return in, nil
}

// DeleteInteraction removes the favorite or save of userID on exerciseID.
func (s *Store) DeleteInteraction(ctx context.Context, kind models.InteractionKind, userID, exerciseID int64) error {
	table, err := interactionTable(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND exercise_id = $2
	`, table), userID, exerciseID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return interactionNotFound(kind)
	}
	return nil
}
