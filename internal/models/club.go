package models

import "time"

// SystemCaller is the caller identity used by the rotation ticker. It bypasses
// the club-membership check; real users can never carry this id because the
// auth layer issues opaque UIDs.
const SystemCaller = "system"

// Club is the root document for a group of users on a rotating watch schedule.
type Club struct {
	ID   string `firestore:"-"`
	Name string `firestore:"name" validate:"required"`

	// RotationIntervalWeeks is how long each movie stays active.
	RotationIntervalWeeks int `firestore:"rotationIntervalWeeks" validate:"gt=0"`

	// CurrentMovieEnd is a denormalized copy of the active movie's end date,
	// kept in sync by the rotation engine. The due-club query reads it so the
	// ticker doesn't have to scan every club's movies subcollection.
	CurrentMovieEnd time.Time `firestore:"currentMovieEndDate"`

	Members []string `firestore:"members"`
}

// HasMember reports whether userID belongs to the club.
func (c *Club) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}
