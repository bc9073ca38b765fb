package models

import "time"

// InteractionKind distinguishes the toggleable per-user relationships.
type InteractionKind string

const (
	KindFavorite InteractionKind = "favorite"
	KindSave     InteractionKind = "save"
)

// Valid reports whether k is a known kind.
func (k InteractionKind) Valid() bool {
	return k == KindFavorite || k == KindSave
}

// Interaction is a favorite or a save. At most one exists per
// (UserID, ExerciseID, Kind).
type Interaction struct {
	ID         int64           `json:"id"`
	Kind       InteractionKind `json:"-"`
	UserID     int64           `json:"userId"`
	ExerciseID int64           `json:"exerciseId"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Rating is a user's 1-5 score for an exercise. At most one exists per
// (UserID, ExerciseID).
type Rating struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	ExerciseID int64     `json:"exerciseId"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const (
	MinRating = 1
	MaxRating = 5
)
