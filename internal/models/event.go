package models

import "time"

// Event types published to the notification fan-out.
const (
	EventMovieRotated = "movie_rotated"
	EventReacted      = "reacted"
	EventCollected    = "collected"
	EventCommented    = "commented"
	EventReplied      = "replied"
)

// Event is a domain event handed to the notification fan-out after a
// successful transaction. Delivery is best-effort and never affects the
// operation that produced the event.
type Event struct {
	Type      string `json:"type"`
	ClubID    string `json:"clubId"`
	MovieID   string `json:"movieId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	ActorID   string `json:"actorId,omitempty"`
	ActorName string `json:"actorName,omitempty"`
	// TargetUserID singles out one recipient, e.g. the author of the comment
	// being replied to.
	TargetUserID string    `json:"targetUserId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
