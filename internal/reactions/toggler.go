// Package reactions implements the like/dislike toggler for the active movie
// and the "add to collection" toggle. Both run as one transactional
// read-modify-write per call; the set/counter logic itself is pure.
package reactions

import (
	"context"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
)

// Store abstracts the transactional movie update used by the togglers.
type Store interface {
	// RunMovieUpdate reads the movie inside a transaction, applies fn to it
	// and writes back the reaction and collection fields atomically. Returns
	// models.ErrMovieNotFound when the movie does not exist.
	RunMovieUpdate(ctx context.Context, clubID, movieID string, fn func(m *models.Movie) error) error
}

// Notifier is the fire-and-forget notification fan-out.
type Notifier interface {
	Publish(ev models.Event)
}

// ReactionState is the caller's membership after a toggle.
type ReactionState struct {
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}

type Toggler struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewToggler(store Store, n Notifier) *Toggler {
	return &Toggler{store: store, notifier: n, now: time.Now}
}

// React toggles userID's like (wantLike) or dislike (!wantLike) on the movie.
// A second identical call undoes the first; liking while disliked moves the
// user across, so likedBy and dislikedBy never intersect and each counter
// always equals its set's size.
func (t *Toggler) React(ctx context.Context, clubID, movieID, userID string, wantLike bool) (ReactionState, error) {
	var state ReactionState
	err := t.store.RunMovieUpdate(ctx, clubID, movieID, func(m *models.Movie) error {
		applyReaction(m, userID, wantLike)
		state = ReactionState{
			Liked:    models.ContainsUser(m.LikedBy, userID),
			Disliked: models.ContainsUser(m.DislikedBy, userID),
		}
		return nil
	})
	if err != nil {
		return ReactionState{}, err
	}

	t.notifier.Publish(models.Event{
		Type:       models.EventReacted,
		ClubID:     clubID,
		MovieID:    movieID,
		ActorID:    userID,
		OccurredAt: t.now(),
	})
	return state, nil
}

// Collect toggles userID's membership in the movie's collectedBy set and
// reports the resulting membership.
func (t *Toggler) Collect(ctx context.Context, clubID, movieID, userID string) (bool, error) {
	var collected bool
	err := t.store.RunMovieUpdate(ctx, clubID, movieID, func(m *models.Movie) error {
		if models.ContainsUser(m.CollectedBy, userID) {
			m.CollectedBy = models.WithoutUser(m.CollectedBy, userID)
		} else {
			m.CollectedBy = append(m.CollectedBy, userID)
		}
		// Recomputed per attempt in case the store retries the callback.
		collected = models.ContainsUser(m.CollectedBy, userID)
		return nil
	})
	if err != nil {
		return false, err
	}

	if collected {
		t.notifier.Publish(models.Event{
			Type:       models.EventCollected,
			ClubID:     clubID,
			MovieID:    movieID,
			ActorID:    userID,
			OccurredAt: t.now(),
		})
	}
	return collected, nil
}

// applyReaction is the pure toggle over the two membership sets.
func applyReaction(m *models.Movie, userID string, wantLike bool) {
	if wantLike {
		if models.ContainsUser(m.LikedBy, userID) {
			m.LikedBy = models.WithoutUser(m.LikedBy, userID)
		} else {
			m.LikedBy = append(m.LikedBy, userID)
			if models.ContainsUser(m.DislikedBy, userID) {
				m.DislikedBy = models.WithoutUser(m.DislikedBy, userID)
			}
		}
	} else {
		if models.ContainsUser(m.DislikedBy, userID) {
			m.DislikedBy = models.WithoutUser(m.DislikedBy, userID)
		} else {
			m.DislikedBy = append(m.DislikedBy, userID)
			if models.ContainsUser(m.LikedBy, userID) {
				m.LikedBy = models.WithoutUser(m.LikedBy, userID)
			}
		}
	}
	m.Likes = len(m.LikedBy)
	m.Dislikes = len(m.DislikedBy)
}
