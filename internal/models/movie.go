package models

import "time"

// Movie status values. A club has at most one active movie; archived movies
// are never revisited or deleted.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Movie is one club watch-cycle entry, created by the rotation engine from a
// consumed suggestion.
type Movie struct {
	ID     string `firestore:"-"`
	ImdbID string `firestore:"imdbId" validate:"required,imdbid"`
	Status string `firestore:"status"`

	StartDate time.Time `firestore:"startDate"`
	EndDate   time.Time `firestore:"endDate"`

	SuggestedByUserID   string `firestore:"suggestedByUserId"`
	SuggestedByUserName string `firestore:"suggestedByUserName"`

	// Counters mirror the set sizes below; the reaction toggler keeps them in
	// lockstep inside a single transaction.
	Likes    int `firestore:"likes" validate:"gte=0"`
	Dislikes int `firestore:"dislikes" validate:"gte=0"`

	LikedBy     []string `firestore:"likedBy"`
	DislikedBy  []string `firestore:"dislikedBy"`
	CollectedBy []string `firestore:"collectedBy"`

	NumComments int `firestore:"numComments" validate:"gte=0"`
}

// ContainsUser reports whether userID is in the given membership list.
func ContainsUser(list []string, userID string) bool {
	for _, id := range list {
		if id == userID {
			return true
		}
	}
	return false
}

// WithoutUser returns list with userID removed, preserving order.
func WithoutUser(list []string, userID string) []string {
	out := list[:0:0]
	for _, id := range list {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
