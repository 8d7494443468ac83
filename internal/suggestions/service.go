// Package suggestions manages the write side of the per-club suggestion
// queue. The rotation engine owns the read/consume side.
package suggestions

import (
	"context"
	"fmt"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/validator"
)

// Store abstracts suggestion persistence.
type Store interface {
	// CreateSuggestion creates s in the club's queue. Returns
	// models.ErrSuggestionExists when the user already holds a pending
	// suggestion there (checked in the same transaction as the create) and
	// models.ErrClubNotFound when the club does not exist.
	CreateSuggestion(ctx context.Context, clubID string, s *models.Suggestion) (string, error)
	GetSuggestion(ctx context.Context, clubID, suggestionID string) (*models.Suggestion, error)
	DeleteSuggestionDoc(ctx context.Context, clubID, suggestionID string) error
}

type Service struct {
	store    Store
	validate *validator.Validator
	now      func() time.Time
}

func NewService(store Store, v *validator.Validator) *Service {
	return &Service{store: store, validate: v, now: time.Now}
}

// Add queues a suggestion for the club. Each user holds at most one pending
// suggestion per club.
func (s *Service) Add(ctx context.Context, clubID, userID, userName, imdbID string) (*models.Suggestion, error) {
	sug := &models.Suggestion{
		ImdbID:    imdbID,
		UserID:    userID,
		UserName:  userName,
		CreatedAt: s.now(),
	}
	if err := s.validate.Struct(sug); err != nil {
		return nil, err
	}

	id, err := s.store.CreateSuggestion(ctx, clubID, sug)
	if err != nil {
		return nil, fmt.Errorf("creating suggestion: %w", err)
	}
	sug.ID = id
	return sug, nil
}

// Remove deletes a not-yet-consumed suggestion. Only its owner may remove it.
func (s *Service) Remove(ctx context.Context, clubID, suggestionID, callerID string) error {
	sug, err := s.store.GetSuggestion(ctx, clubID, suggestionID)
	if err != nil {
		return err
	}
	if sug.UserID != callerID {
		return models.ErrUnauthorized
	}
	return s.store.DeleteSuggestionDoc(ctx, clubID, suggestionID)
}
