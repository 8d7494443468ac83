package comments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/validator"
)

// Store abstracts comment persistence.
type Store interface {
	// CreateComment creates the comment and increments the movie's comment
	// counter in one transaction. Returns models.ErrMovieNotFound when the
	// movie does not exist.
	CreateComment(ctx context.Context, clubID, movieID string, c *models.Comment) (string, error)
	GetComment(ctx context.Context, clubID, movieID, commentID string) (*models.Comment, error)
	// RunCommentUpdate reads the comment inside a transaction, applies fn and
	// writes back its mutable fields atomically.
	RunCommentUpdate(ctx context.Context, clubID, movieID, commentID string, fn func(c *models.Comment) error) error
	// ListComments returns the movie's comments ordered by creation time.
	ListComments(ctx context.Context, clubID, movieID string) ([]models.Comment, error)
}

// Notifier is the fire-and-forget notification fan-out.
type Notifier interface {
	Publish(ev models.Event)
}

type Service struct {
	store    Store
	notifier Notifier
	validate *validator.Validator
	now      func() time.Time
}

func NewService(store Store, n Notifier, v *validator.Validator) *Service {
	return &Service{store: store, notifier: n, validate: v, now: time.Now}
}

// Add creates a comment on the movie. When parentID names an existing
// comment the new one is a reply and its author is notified; a parentID that
// resolves to nothing is stored as-is and surfaces as a top-level node when
// the thread is built.
func (s *Service) Add(ctx context.Context, clubID, movieID, userID, userName, text, parentID string) (*models.Comment, error) {
	c := &models.Comment{
		UserID:    userID,
		UserName:  userName,
		Text:      text,
		CreatedAt: s.now(),
		ParentID:  parentID,
		LikedBy:   []string{},
	}
	if err := s.validate.Struct(c); err != nil {
		return nil, err
	}

	var parent *models.Comment
	if parentID != "" {
		p, err := s.store.GetComment(ctx, clubID, movieID, parentID)
		if err != nil {
			slog.Warn("could not resolve parent comment", "club", clubID, "movie", movieID,
				"parent", parentID, "error", err)
		}
		parent = p
	}

	id, err := s.store.CreateComment(ctx, clubID, movieID, c)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	c.ID = id

	ev := models.Event{
		Type:       models.EventCommented,
		ClubID:     clubID,
		MovieID:    movieID,
		CommentID:  id,
		ActorID:    userID,
		ActorName:  userName,
		OccurredAt: c.CreatedAt,
	}
	if parent != nil && parent.UserID != "" && parent.UserID != userID {
		ev.Type = models.EventReplied
		ev.TargetUserID = parent.UserID
	}
	s.notifier.Publish(ev)
	return c, nil
}

// Delete anonymizes the comment in place so reply chains keep their shape.
// Only the author may delete; already-anonymized comments have no author and
// therefore cannot be deleted again.
func (s *Service) Delete(ctx context.Context, clubID, movieID, commentID, callerID string) error {
	if callerID == "" {
		return models.ErrUnauthorized
	}
	return s.store.RunCommentUpdate(ctx, clubID, movieID, commentID, func(c *models.Comment) error {
		if c.UserID != callerID {
			return models.ErrUnauthorized
		}
		c.Anonymize()
		return nil
	})
}

// ToggleLike flips callerID's like on the comment and reports the resulting
// membership.
func (s *Service) ToggleLike(ctx context.Context, clubID, movieID, commentID, callerID string) (bool, error) {
	var liked bool
	err := s.store.RunCommentUpdate(ctx, clubID, movieID, commentID, func(c *models.Comment) error {
		if models.ContainsUser(c.LikedBy, callerID) {
			c.LikedBy = models.WithoutUser(c.LikedBy, callerID)
		} else {
			c.LikedBy = append(c.LikedBy, callerID)
		}
		c.Likes = len(c.LikedBy)
		liked = models.ContainsUser(c.LikedBy, callerID)
		return nil
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

// ListTree fetches the movie's comments and builds the display forest.
func (s *Service) ListTree(ctx context.Context, clubID, movieID string) ([]*models.CommentNode, error) {
	flat, err := s.store.ListComments(ctx, clubID, movieID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return BuildTree(flat), nil
}
