package ratings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
	"exercisehub/internal/store"
)

type ratingKey struct {
	userID     int64
	exerciseID int64
}

type fakeStore struct {
	exercises map[int64]models.Exercise
	ratings   map[ratingKey]models.Rating
	lookups   int
	nextID    int64
}

func newFakeStore(exercises ...models.Exercise) *fakeStore {
	fs := &fakeStore{
		exercises: make(map[int64]models.Exercise),
		ratings:   make(map[ratingKey]models.Rating),
	}
	for _, ex := range exercises {
		fs.exercises[ex.ID] = ex
	}
	return fs
}

func (f *fakeStore) ExerciseByID(_ context.Context, id int64) (models.Exercise, error) {
	f.lookups++
	ex, ok := f.exercises[id]
	if !ok {
		return models.Exercise{}, store.ErrExerciseNotFound
	}
	return ex, nil
}

func (f *fakeStore) UpsertRating(_ context.Context, userID, exerciseID int64, value int) (models.Rating, error) {
	key := ratingKey{userID, exerciseID}
	now := time.Now()
	r, ok := f.ratings[key]
	if !ok {
		f.nextID++
		r = models.Rating{ID: f.nextID, UserID: userID, ExerciseID: exerciseID, CreatedAt: now}
	}
	r.Rating = value
	r.UpdatedAt = now
	f.ratings[key] = r
	return r, nil
}

func (f *fakeStore) DeleteRating(_ context.Context, userID, exerciseID int64) error {
	key := ratingKey{userID, exerciseID}
	if _, ok := f.ratings[key]; !ok {
		return store.ErrRatingNotFound
	}
	delete(f.ratings, key)
	return nil
}

var (
	alice   = &models.SessionUser{ID: 1, Username: "alice"}
	bob     = &models.SessionUser{ID: 2, Username: "bob"}
	public  = models.Exercise{ID: 10, IsPublic: true, CreatorID: bob.ID}
	private = models.Exercise{ID: 11, IsPublic: false, CreatorID: bob.ID}
)

func TestRate_UpsertKeepsSingleRow(t *testing.T) {
	fs := newFakeStore(public)
	svc := New(fs)
	ctx := context.Background()

	first, err := svc.Rate(ctx, alice, public.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Rating)

	second, err := svc.Rate(ctx, alice, public.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, second.Rating)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, fs.ratings, 1)
}

func TestRate_Errors(t *testing.T) {
	tests := []struct {
		name        string
		actor       *models.SessionUser
		exerciseID  int64
		value       int
		wantErr     error
		wantStatus  int
		wantLookups int
	}{
		{name: "no session", exerciseID: public.ID, value: 3, wantErr: apperrors.ErrUnauthorized, wantStatus: 401},
		{name: "zero", actor: alice, exerciseID: public.ID, value: 0, wantErr: ErrInvalidRating, wantStatus: 400},
		{name: "six", actor: alice, exerciseID: public.ID, value: 6, wantErr: ErrInvalidRating, wantStatus: 400},
		{name: "invalid value on missing exercise", actor: alice, exerciseID: 999, value: 9, wantErr: ErrInvalidRating, wantStatus: 400},
		{name: "missing exercise", actor: alice, exerciseID: 999, value: 4, wantErr: store.ErrExerciseNotFound, wantStatus: 404, wantLookups: 1},
		{name: "private exercise of another user", actor: alice, exerciseID: private.ID, value: 4, wantErr: ErrPrivateExercise, wantStatus: 403, wantLookups: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore(public, private)
			svc := New(fs)

			_, err := svc.Rate(context.Background(), tt.actor, tt.exerciseID, tt.value)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, apperrors.StatusOf(err))
			assert.Equal(t, tt.wantLookups, fs.lookups)
			assert.Empty(t, fs.ratings)
		})
	}
}

func TestRate_PrivateExerciseByCreator(t *testing.T) {
	svc := New(newFakeStore(private))

	r, err := svc.Rate(context.Background(), bob, private.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Rating)
}

func TestRate_BoundaryValues(t *testing.T) {
	svc := New(newFakeStore(public))

	for _, v := range []int{models.MinRating, models.MaxRating} {
		r, err := svc.Rate(context.Background(), alice, public.ID, v)
		require.NoError(t, err)
		assert.Equal(t, v, r.Rating)
	}
}

func TestUnrate(t *testing.T) {
	fs := newFakeStore(public)
	svc := New(fs)
	ctx := context.Background()

	err := svc.Unrate(ctx, alice, public.ID)
	assert.ErrorIs(t, err, store.ErrRatingNotFound)
	assert.Equal(t, 404, apperrors.StatusOf(err))

	_, err = svc.Rate(ctx, alice, public.ID, 4)
	require.NoError(t, err)
	require.NoError(t, svc.Unrate(ctx, alice, public.ID))
	assert.Empty(t, fs.ratings)

	assert.ErrorIs(t, svc.Unrate(ctx, nil, public.ID), apperrors.ErrUnauthorized)
}
