package models

import "time"

// Suggestion is a user's proposed next movie, queued FIFO per club. Each user
// holds at most one pending suggestion per club. The rotation engine deletes a
// suggestion when it becomes the next movie; the owner may delete it earlier.
type Suggestion struct {
	ID        string    `firestore:"-"`
	ImdbID    string    `firestore:"imdbId" validate:"required,imdbid"`
	UserID    string    `firestore:"userId" validate:"required"`
	UserName  string    `firestore:"userName"`
	CreatedAt time.Time `firestore:"createdAt"`
}
