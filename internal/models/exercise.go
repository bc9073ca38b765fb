package models

import "time"

// Exercise is a user-authored exercise. Difficulty is in [1,5].
type Exercise struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Difficulty  int       `json:"difficulty"`
	IsPublic    bool      `json:"isPublic"`
	CreatorID   int64     `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CanMutate reports whether userID may edit or rate the exercise: creators
// always may, everyone else only while the exercise is public.
func (e Exercise) CanMutate(userID int64) bool {
	return e.CreatorID == userID || e.IsPublic
}

// CanDelete reports whether userID may delete the exercise. Only the creator may.
func (e Exercise) CanDelete(userID int64) bool {
	return e.CreatorID == userID
}

// ExerciseInput carries the fields of a new exercise.
type ExerciseInput struct {
	Name        string
	Description string
	Difficulty  int
	IsPublic    bool
}

// ExerciseUpdate is a partial update; nil fields are left untouched.
type ExerciseUpdate struct {
	Name        *string
	Description *string
	Difficulty  *int
	IsPublic    *bool
}

// Empty reports whether the update changes nothing.
func (u ExerciseUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Difficulty == nil && u.IsPublic == nil
}

// Creator is the public identity of an exercise's author.
type Creator struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// InteractionCounts are the public favorite and save totals of an exercise.
// They are computed on read and never stored.
type InteractionCounts struct {
	Favorites int `json:"favorites"`
	Saves     int `json:"saves"`
}

// ExerciseSummary is an exercise as listed in catalogs.
type ExerciseSummary struct {
	Exercise
	Creator       Creator           `json:"creator"`
	Count         InteractionCounts `json:"_count"`
	AverageRating *float64          `json:"averageRating"`
}

// ExerciseDetail is an exercise together with the viewer's own interactions.
type ExerciseDetail struct {
	ExerciseSummary
	IsFavorited bool `json:"isFavorited"`
	IsSaved     bool `json:"isSaved"`
	UserRating  *int `json:"userRating"`
}

// ExerciseUser is a user who favorited and/or saved an exercise.
type ExerciseUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	HasFavorited bool   `json:"hasFavorited"`
	HasSaved     bool   `json:"hasSaved"`
}

// Sort keys accepted by ExerciseFilter.
const (
	SortByCreatedAt  = "createdAt"
	SortByName       = "name"
	SortByDifficulty = "difficulty"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ExerciseFilter constrains catalog listings. ViewerID (0 when anonymous)
// additionally exposes the viewer's own private exercises.
type ExerciseFilter struct {
	Name        string
	Description string
	Difficulty  int
	SortBy      string
	SortOrder   string
	ViewerID    int64
}
