package httpapi

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"exercisehub/internal/models"
	"exercisehub/internal/store"
)

type pairKey struct {
	userID     int64
	exerciseID int64
}

// memStore is an in-memory stand-in for *store.Store used by the handler tests.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]models.User
	passwords    map[string]string
	exercises    map[int64]models.Exercise
	interactions map[models.InteractionKind]map[pairKey]models.Interaction
	ratings      map[pairKey]models.Rating
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[int64]models.User{},
		passwords: map[string]string{},
		exercises: map[int64]models.Exercise{},
		interactions: map[models.InteractionKind]map[pairKey]models.Interaction{
			models.KindFavorite: {},
			models.KindSave:     {},
		},
		ratings: map[pairKey]models.Rating{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, username, password string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.passwords[username]; ok {
		return models.User{}, store.ErrUserExists
	}
	u := models.User{ID: m.id(), Username: username, CreatedAt: time.Now()}
	m.users[u.ID] = u
	m.passwords[username] = password
	return u, nil
}

func (m *memStore) Authenticate(_ context.Context, username, password string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pw, ok := m.passwords[username]; !ok || pw != password {
		return models.User{}, store.ErrInvalidCredentials
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, store.ErrInvalidCredentials
}

func (m *memStore) CreateExercise(_ context.Context, creatorID int64, input models.ExerciseInput) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	ex := models.Exercise{
		ID:          m.id(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Difficulty:  input.Difficulty,
		IsPublic:    input.IsPublic,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.exercises[ex.ID] = ex
	return ex, nil
}

func (m *memStore) ExerciseByID(_ context.Context, id int64) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.exercises[id]
	if !ok {
		return models.Exercise{}, store.ErrExerciseNotFound
	}
	return ex, nil
}

func (m *memStore) summary(ex models.Exercise) models.ExerciseSummary {
	sum := models.ExerciseSummary{
		Exercise: ex,
		Creator:  models.Creator{ID: ex.CreatorID, Username: m.users[ex.CreatorID].Username},
	}
	for k := range m.interactions[models.KindFavorite] {
		if k.exerciseID == ex.ID {
			sum.Count.Favorites++
		}
	}
	for k := range m.interactions[models.KindSave] {
		if k.exerciseID == ex.ID {
			sum.Count.Saves++
		}
	}
	var total, n int
	for k, r := range m.ratings {
		if k.exerciseID == ex.ID {
			total += r.Rating
			n++
		}
	}
	if n > 0 {
		avg := float64(total) / float64(n)
		sum.AverageRating = &avg
	}
	return sum
}

func (m *memStore) detail(ex models.Exercise, viewerID int64) models.ExerciseDetail {
	key := pairKey{viewerID, ex.ID}
	d := models.ExerciseDetail{ExerciseSummary: m.summary(ex)}
	_, d.IsFavorited = m.interactions[models.KindFavorite][key]
	_, d.IsSaved = m.interactions[models.KindSave][key]
	if r, ok := m.ratings[key]; ok {
		v := r.Rating
		d.UserRating = &v
	}
	return d
}

func (m *memStore) ExerciseDetail(_ context.Context, id, viewerID int64) (models.ExerciseDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.exercises[id]
	if !ok {
		return models.ExerciseDetail{}, store.ErrExerciseNotFound
	}
	return m.detail(ex, viewerID), nil
}

func (m *memStore) UpdateExercise(_ context.Context, id int64, upd models.ExerciseUpdate) (models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.exercises[id]
	if !ok {
		return models.Exercise{}, store.ErrExerciseNotFound
	}
	if upd.Name != nil {
		ex.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		ex.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Difficulty != nil {
		ex.Difficulty = *upd.Difficulty
	}
	if upd.IsPublic != nil {
		ex.IsPublic = *upd.IsPublic
	}
	ex.UpdatedAt = time.Now()
	m.exercises[id] = ex
	return ex, nil
}

func (m *memStore) DeleteExercise(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[id]; !ok {
		return store.ErrExerciseNotFound
	}
	delete(m.exercises, id)
	for _, rows := range m.interactions {
		for k := range rows {
			if k.exerciseID == id {
				delete(rows, k)
			}
		}
	}
	for k := range m.ratings {
		if k.exerciseID == id {
			delete(m.ratings, k)
		}
	}
	return nil
}

func (m *memStore) collect(keep func(models.Exercise) bool) []models.ExerciseSummary {
	out := []models.ExerciseSummary{}
	for _, ex := range m.exercises {
		if keep(ex) {
			out = append(out, m.summary(ex))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListExercises(_ context.Context, filter models.ExerciseFilter) ([]models.ExerciseSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := strings.ToLower(strings.TrimSpace(filter.Name))
	return m.collect(func(ex models.Exercise) bool {
		if !ex.IsPublic && ex.CreatorID != filter.ViewerID {
			return false
		}
		if name != "" && !strings.Contains(strings.ToLower(ex.Name), name) {
			return false
		}
		return filter.Difficulty == 0 || ex.Difficulty == filter.Difficulty
	}), nil
}

func (m *memStore) ExercisesByCreator(_ context.Context, userID int64) ([]models.ExerciseSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(ex models.Exercise) bool { return ex.CreatorID == userID }), nil
}

func (m *memStore) FavoriteExercises(_ context.Context, userID int64) ([]models.ExerciseSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(ex models.Exercise) bool {
		_, ok := m.interactions[models.KindFavorite][pairKey{userID, ex.ID}]
		return ok
	}), nil
}

func (m *memStore) InteractedExercises(_ context.Context, userID int64) ([]models.ExerciseDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ExerciseDetail{}
	for _, ex := range m.exercises {
		d := m.detail(ex, userID)
		if d.IsFavorited || d.IsSaved {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) ExerciseUsers(_ context.Context, exerciseID int64) ([]models.ExerciseUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := map[int64]*models.ExerciseUser{}
	mark := func(kind models.InteractionKind, set func(*models.ExerciseUser)) {
		for k := range m.interactions[kind] {
			if k.exerciseID != exerciseID {
				continue
			}
			u, ok := byID[k.userID]
			if !ok {
				u = &models.ExerciseUser{ID: k.userID, Username: m.users[k.userID].Username}
				byID[k.userID] = u
			}
			set(u)
		}
	}
	mark(models.KindFavorite, func(u *models.ExerciseUser) { u.HasFavorited = true })
	mark(models.KindSave, func(u *models.ExerciseUser) { u.HasSaved = true })

	out := []models.ExerciseUser{}
	for _, u := range byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func interactionNotFound(kind models.InteractionKind) error {
	if kind == models.KindSave {
		return store.ErrSaveNotFound
	}
	return store.ErrFavoriteNotFound
}

func (m *memStore) FindInteraction(_ context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.interactions[kind][pairKey{userID, exerciseID}]
	if !ok {
		return models.Interaction{}, interactionNotFound(kind)
	}
	return in, nil
}

func (m *memStore) CreateInteraction(_ context.Context, kind models.InteractionKind, userID, exerciseID int64) (models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, exerciseID}
	if _, ok := m.interactions[kind][key]; ok {
		return models.Interaction{}, store.ErrInteractionExists
	}
	if _, ok := m.exercises[exerciseID]; !ok {
		return models.Interaction{}, store.ErrExerciseNotFound
	}
	in := models.Interaction{ID: m.id(), Kind: kind, UserID: userID, ExerciseID: exerciseID, CreatedAt: time.Now()}
	m.interactions[kind][key] = in
	return in, nil
}

func (m *memStore) DeleteInteraction(_ context.Context, kind models.InteractionKind, userID, exerciseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, exerciseID}
	if _, ok := m.interactions[kind][key]; !ok {
		return interactionNotFound(kind)
	}
	delete(m.interactions[kind], key)
	return nil
}

func (m *memStore) UpsertRating(_ context.Context, userID, exerciseID int64, value int) (models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[exerciseID]; !ok {
		return models.Rating{}, store.ErrExerciseNotFound
	}
	key := pairKey{userID, exerciseID}
	now := time.Now()
	r, ok := m.ratings[key]
	if !ok {
		r = models.Rating{ID: m.id(), UserID: userID, ExerciseID: exerciseID, CreatedAt: now}
	}
	r.Rating = value
	r.UpdatedAt = now
	m.ratings[key] = r
	return r, nil
}

func (m *memStore) DeleteRating(_ context.Context, userID, exerciseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, exerciseID}
	if _, ok := m.ratings[key]; !ok {
		return store.ErrRatingNotFound
	}
	delete(m.ratings, key)
	return nil
}

func (m *memStore) ratingRows(userID, exerciseID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.ratings {
		if k == (pairKey{userID, exerciseID}) {
			n++
		}
	}
	return n
}

// headerResolver authenticates "Bearer <user id>" against the users in memStore.
type headerResolver struct {
	store *memStore
}

func (h headerResolver) Resolve(r *http.Request) (*models.SessionUser, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, nil
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	u, ok := h.store.users[id]
	if !ok {
		return nil, nil
	}
	su := u.SessionUser()
	return &su, nil
}

func (h headerResolver) Start(_ http.ResponseWriter, _ *http.Request, user models.SessionUser) (string, error) {
	return strconv.FormatInt(user.ID, 10), nil
}

func (h headerResolver) End(http.ResponseWriter, *http.Request) error {
	return nil
}
