package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

// ErrExerciseNotFound signals a missing exercise record.
var ErrExerciseNotFound = apperrors.NotFound("Exercise not found")

const exerciseColumns = `e.id, e.name, e.description, e.difficulty, e.is_public, e.creator_id, e.created_at, e.updated_at`

var sortColumns = map[string]string{
	models.SortByCreatedAt:  "e.created_at",
	models.SortByName:       "e.name",
	models.SortByDifficulty: "e.difficulty",
}

// CreateExercise inserts a new exercise owned by creatorID.
func (s *Store) CreateExercise(ctx context.Context, creatorID int64, input models.ExerciseInput) (models.Exercise, error) {
	ex := models.Exercise{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Difficulty:  input.Difficulty,
		IsPublic:    input.IsPublic,
		CreatorID:   creatorID,
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO exercises (name, description, difficulty, is_public, creator_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, ex.Name, ex.Description, ex.Difficulty, ex.IsPublic, creatorID).Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}

	return ex, nil
}

// ExerciseByID returns a single exercise by primary key.
func (s *Store) ExerciseByID(ctx context.Context, id int64) (models.Exercise, error) {
	var ex models.Exercise
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, difficulty, is_public, creator_id, created_at, updated_at
		FROM exercises
		WHERE id = $1
	`, id).Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Difficulty, &ex.IsPublic, &ex.CreatorID, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Exercise{}, ErrExerciseNotFound
		}
		return models.Exercise{}, fmt.Errorf("select exercise: %w", err)
	}
	return ex, nil
}

// UpdateExercise applies a partial update and returns the stored row.
func (s *Store) UpdateExercise(ctx context.Context, id int64, upd models.ExerciseUpdate) (models.Exercise, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		upd.Name = &trimmed
	}
	if upd.Description != nil {
		trimmed := strings.TrimSpace(*upd.Description)
		upd.Description = &trimmed
	}

	var ex models.Exercise
	err := s.db.QueryRowContext(ctx, `
		UPDATE exercises
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			difficulty = COALESCE($4, difficulty),
			is_public = COALESCE($5, is_public),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, difficulty, is_public, creator_id, created_at, updated_at
	`, id, upd.Name, upd.Description, upd.Difficulty, upd.IsPublic).Scan(
		&ex.ID, &ex.Name, &ex.Description, &ex.Difficulty, &ex.IsPublic, &ex.CreatorID, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Exercise{}, ErrExerciseNotFound
		}
		return models.Exercise{}, fmt.Errorf("update exercise: %w", err)
	}
	return ex, nil
}

// DeleteExercise removes an exercise. Favorites, saves and ratings go with it
// through ON DELETE CASCADE.
func (s *Store) DeleteExercise(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM exercises
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// ListExercises returns the public catalog plus the viewer's own exercises.
func (s *Store) ListExercises(ctx context.Context, filter models.ExerciseFilter) ([]models.ExerciseSummary, error) {
	query := `
		SELECT ` + exerciseColumns + `, u.username
		FROM exercises e
		JOIN users u ON u.id = e.creator_id
		WHERE (e.is_public OR e.creator_id = $1)`
	args := []any{filter.ViewerID}
	argIndex := 2

	if name := strings.TrimSpace(filter.Name); name != "" {
		query += fmt.Sprintf(` AND e.name ILIKE $%d ESCAPE '\'`, argIndex)
		args = append(args, containsPattern(name))
		argIndex++
	}

	if description := strings.TrimSpace(filter.Description); description != "" {
		query += fmt.Sprintf(` AND e.description ILIKE $%d ESCAPE '\'`, argIndex)
		args = append(args, containsPattern(description))
		argIndex++
	}

	if filter.Difficulty > 0 {
		query += fmt.Sprintf(" AND e.difficulty = $%d", argIndex)
		args = append(args, filter.Difficulty)
	}

	query += orderClause(filter.SortBy, filter.SortOrder)

	return s.querySummaries(ctx, query, args...)
}

// ExercisesByCreator lists the exercises a user authored, newest first.
func (s *Store) ExercisesByCreator(ctx context.Context, userID int64) ([]models.ExerciseSummary, error) {
	return s.querySummaries(ctx, `
		SELECT `+exerciseColumns+`, u.username
		FROM exercises e
		JOIN users u ON u.id = e.creator_id
		WHERE e.creator_id = $1
		ORDER BY e.created_at DESC, e.id DESC`, userID)
}

// FavoriteExercises lists the exercises a user favorited, newest first.
func (s *Store) FavoriteExercises(ctx context.Context, userID int64) ([]models.ExerciseSummary, error) {
	return s.querySummaries(ctx, `
		SELECT `+exerciseColumns+`, u.username
		FROM exercises e
		JOIN users u ON u.id = e.creator_id
		WHERE EXISTS (SELECT 1 FROM favorites f WHERE f.exercise_id = e.id AND f.user_id = $1)
		ORDER BY e.created_at DESC, e.id DESC`, userID)
}

// ExerciseDetail returns an exercise with counts and viewerID's own interactions.
func (s *Store) ExerciseDetail(ctx context.Context, id, viewerID int64) (models.ExerciseDetail, error) {
	details, err := s.queryDetails(ctx, `
		SELECT `+exerciseColumns+`, u.username,
			EXISTS (SELECT 1 FROM favorites f WHERE f.exercise_id = e.id AND f.user_id = $2),
			EXISTS (SELECT 1 FROM saves sv WHERE sv.exercise_id = e.id AND sv.user_id = $2),
			(SELECT r.rating FROM ratings r WHERE r.exercise_id = e.id AND r.user_id = $2)
		FROM exercises e
		JOIN users u ON u.id = e.creator_id
		WHERE e.id = $1`, id, viewerID)
	if err != nil {
		return models.ExerciseDetail{}, err
	}
	if len(details) == 0 {
		return models.ExerciseDetail{}, ErrExerciseNotFound
	}
	return details[0], nil
}

// InteractedExercises lists the exercises a user favorited or saved, newest first.
func (s *Store) InteractedExercises(ctx context.Context, userID int64) ([]models.ExerciseDetail, error) {
	return s.queryDetails(ctx, `
		SELECT `+exerciseColumns+`, u.username,
			EXISTS (SELECT 1 FROM favorites f WHERE f.exercise_id = e.id AND f.user_id = $1),
			EXISTS (SELECT 1 FROM saves sv WHERE sv.exercise_id = e.id AND sv.user_id = $1),
			(SELECT r.rating FROM ratings r WHERE r.exercise_id = e.id AND r.user_id = $1)
		FROM exercises e
		JOIN users u ON u.id = e.creator_id
		WHERE EXISTS (SELECT 1 FROM favorites f WHERE f.exercise_id = e.id AND f.user_id = $1)
			OR EXISTS (SELECT 1 FROM saves sv WHERE sv.exercise_id = e.id AND sv.user_id = $1)
		ORDER BY e.created_at DESC, e.id DESC`, userID)
}

// ExerciseUsers lists users who favorited or saved the exercise.
func (s *Store) ExerciseUsers(ctx context.Context, exerciseID int64) ([]models.ExerciseUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username,
			EXISTS (SELECT 1 FROM favorites f WHERE f.user_id = u.id AND f.exercise_id = $1),
			EXISTS (SELECT 1 FROM saves sv WHERE sv.user_id = u.id AND sv.exercise_id = $1)
		FROM users u
		WHERE u.id IN (
			SELECT user_id FROM favorites WHERE exercise_id = $1
			UNION
			SELECT user_id FROM saves WHERE exercise_id = $1
		)
		ORDER BY u.username ASC
	`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("select exercise users: %w", err)
	}
	defer rows.Close()

	users := []models.ExerciseUser{}
	for rows.Next() {
		var u models.ExerciseUser
		if err := rows.Scan(&u.ID, &u.Username, &u.HasFavorited, &u.HasSaved); err != nil {
			return nil, fmt.Errorf("scan exercise user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise users: %w", err)
	}
	return users, nil
}

type exerciseStat struct {
	counts  models.InteractionCounts
	average *float64
}

// exerciseStats loads favorite/save counts and average ratings for ids in one round trip.
func (s *Store) exerciseStats(ctx context.Context, ids []int64) (map[int64]exerciseStat, error) {
	stats := make(map[int64]exerciseStat, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id,
			(SELECT COUNT(*) FROM favorites f WHERE f.exercise_id = e.id),
			(SELECT COUNT(*) FROM saves sv WHERE sv.exercise_id = e.id),
			(SELECT AVG(r.rating)::float8 FROM ratings r WHERE r.exercise_id = e.id)
		FROM exercises e
		WHERE e.id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      int64
			st      exerciseStat
			average sql.NullFloat64
		)
		if err := rows.Scan(&id, &st.counts.Favorites, &st.counts.Saves, &average); err != nil {
			return nil, fmt.Errorf("scan exercise stats: %w", err)
		}
		if average.Valid {
			v := average.Float64
			st.average = &v
		}
		stats[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise stats: %w", err)
	}
	return stats, nil
}

func (s *Store) querySummaries(ctx context.Context, query string, args ...any) ([]models.ExerciseSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select exercises: %w", err)
	}
	defer rows.Close()

	summaries := []models.ExerciseSummary{}
	for rows.Next() {
		var sum models.ExerciseSummary
		if err := rows.Scan(append(exerciseDest(&sum.Exercise), &sum.Creator.Username)...); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		sum.Creator.ID = sum.CreatorID
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	rows.Close()

	ptrs := make([]*models.ExerciseSummary, len(summaries))
	for i := range summaries {
		ptrs[i] = &summaries[i]
	}
	if err := s.attachStats(ctx, ptrs); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *Store) queryDetails(ctx context.Context, query string, args ...any) ([]models.ExerciseDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select exercises: %w", err)
	}
	defer rows.Close()

	details := []models.ExerciseDetail{}
	for rows.Next() {
		var (
			d          models.ExerciseDetail
			userRating sql.NullInt64
		)
		dest := append(exerciseDest(&d.Exercise), &d.Creator.Username, &d.IsFavorited, &d.IsSaved, &userRating)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		d.Creator.ID = d.CreatorID
		if userRating.Valid {
			v := int(userRating.Int64)
			d.UserRating = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	rows.Close()

	ptrs := make([]*models.ExerciseSummary, len(details))
	for i := range details {
		ptrs[i] = &details[i].ExerciseSummary
	}
	if err := s.attachStats(ctx, ptrs); err != nil {
		return nil, err
	}
	return details, nil
}

// attachStats fills counts and average rating into each summary.
func (s *Store) attachStats(ctx context.Context, summaries []*models.ExerciseSummary) error {
	ids := make([]int64, len(summaries))
	for i, sum := range summaries {
		ids[i] = sum.ID
	}

	stats, err := s.exerciseStats(ctx, ids)
	if err != nil {
		return err
	}

	for _, sum := range summaries {
		st := stats[sum.ID]
		sum.Count = st.counts
		sum.AverageRating = st.average
	}
	return nil
}

func exerciseDest(ex *models.Exercise) []any {
	return []any{&ex.ID, &ex.Name, &ex.Description, &ex.Difficulty, &ex.IsPublic, &ex.CreatorID, &ex.CreatedAt, &ex.UpdatedAt}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text literally anywhere in the column.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = sortColumns[models.SortByCreatedAt]
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, models.SortAsc) {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, e.id %s", column, direction, direction)
}
