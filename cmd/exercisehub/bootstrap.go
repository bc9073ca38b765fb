package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"exercisehub/internal/models"
	"exercisehub/internal/store"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

type seedStore interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	ExercisesByCreator(ctx context.Context, userID int64) ([]models.ExerciseSummary, error)
	CreateExercise(ctx context.Context, creatorID int64, input models.ExerciseInput) (models.Exercise, error)
}

var demoExercises = []models.ExerciseInput{
	{Name: "Push-ups", Description: "Hands under shoulders, lower until the chest nearly touches the floor.", Difficulty: 2, IsPublic: true},
	{Name: "Plank", Description: "Hold a straight line from head to heels on forearms and toes.", Difficulty: 1, IsPublic: true},
	{Name: "Pistol squat", Description: "Single-leg squat to full depth with the other leg extended.", Difficulty: 5, IsPublic: true},
	{Name: "Burpees", Description: "Squat, kick back to a plank, push-up, jump up.", Difficulty: 3, IsPublic: true},
	{Name: "Morning mobility flow", Description: "Personal warm-up: cat-cow, hip circles, thoracic rotations.", Difficulty: 1, IsPublic: false},
}

// bootstrapDemoData ensures the demo account and its exercises exist. It is
// safe to run on every start.
func bootstrapDemoData(ctx context.Context, st seedStore) error {
	user, err := ensureDemoUser(ctx, st)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return ensureDemoExercises(ctx, st, user.ID)
}

func ensureDemoUser(ctx context.Context, st seedStore) (*models.User, error) {
	user, err := st.CreateUser(ctx, demoUsername, demoPassword)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, store.ErrUserExists) {
		return nil, fmt.Errorf("bootstrap demo user: %w", err)
	}

	user, err = st.Authenticate(ctx, demoUsername, demoPassword)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			log.Warn().Msg("demo user exists with a different password, skipping demo exercises")
			return nil, nil
		}
		return nil, fmt.Errorf("lookup demo user: %w", err)
	}
	return &user, nil
}

func ensureDemoExercises(ctx context.Context, st seedStore, userID int64) error {
	existing, err := st.ExercisesByCreator(ctx, userID)
	if err != nil {
		return fmt.Errorf("list demo exercises: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, input := range demoExercises {
		if _, err := st.CreateExercise(ctx, userID, input); err != nil {
			return fmt.Errorf("insert demo exercise %q: %w", input.Name, err)
		}
	}
	log.Info().Int("count", len(demoExercises)).Msg("seeded demo exercises")
	return nil
}
