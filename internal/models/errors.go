package models

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes with errors.Is; anything else is treated as an internal error.
var (
	ErrUnauthorized       = errors.New("caller is not a member of the club")
	ErrRotationNotDue     = errors.New("rotation not due yet")
	ErrClubNotFound       = errors.New("club not found")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrSuggestionExists   = errors.New("user already has a suggestion in this club")

	// ErrTransient wraps store-level conflict/availability failures after the
	// store's own retries are exhausted. Safe to retry with the same arguments.
	ErrTransient = errors.New("transient storage failure")
)
