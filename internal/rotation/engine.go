package rotation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/util"
)

// ReasonNoSuggestions marks the partial outcome where the active movie was
// archived but the suggestion queue was empty, leaving the club with no
// active movie. That is a valid terminal state, not an error.
const ReasonNoSuggestions = "no_suggestions"

// Result reports the outcome of a rotation request.
type Result struct {
	Rotated    bool   `json:"rotated"`
	Archived   bool   `json:"archived"`
	NewMovieID string `json:"newMovieId,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Engine is the club rotation state machine. All decisions and mutations for
// one Rotate call happen inside a single store transaction; the engine keeps
// no state of its own between calls.
type Engine struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

func NewEngine(store Store, n Notifier) *Engine {
	return &Engine{store: store, notifier: n, now: time.Now}
}

// Rotate archives the club's active movie once its end date has passed and
// activates the oldest pending suggestion. callerID must be a club member,
// except models.SystemCaller (the ticker identity).
//
// Rotation is due only strictly after end-of-day of the active movie's end
// date; a call on the end date itself returns models.ErrRotationNotDue.
func (e *Engine) Rotate(ctx context.Context, clubID, callerID string) (Result, error) {
	var res Result
	var ev *models.Event

	err := e.store.RunTransaction(ctx, func(tx Tx) error {
		// Reset per attempt: the store may retry this callback on conflict.
		res = Result{}
		ev = nil

		club, err := tx.Club(clubID)
		if err != nil {
			return err
		}
		if callerID != models.SystemCaller && !club.HasMember(callerID) {
			return models.ErrUnauthorized
		}

		active, err := tx.ActiveMovies(clubID)
		if err != nil {
			return fmt.Errorf("reading active movies: %w", err)
		}
		if len(active) > 1 {
			slog.Warn("club has multiple active movies, rotating the first",
				"club", clubID, "count", len(active))
		}

		// Reads must precede writes in the transaction, so fetch the next
		// suggestion before deciding anything.
		next, err := tx.OldestSuggestion(clubID)
		if err != nil {
			return fmt.Errorf("reading suggestion queue: %w", err)
		}

		now := e.now()
		var startDate time.Time
		if len(active) > 0 {
			current := active[0]
			archiveEnd := util.EndOfDay(current.EndDate)
			if !now.After(archiveEnd) {
				return models.ErrRotationNotDue
			}
			if err := tx.ArchiveMovie(clubID, current.ID, archiveEnd); err != nil {
				return fmt.Errorf("archiving movie %s: %w", current.ID, err)
			}
			res.Archived = true
			startDate = util.NextDayStart(archiveEnd)
		} else {
			// First rotation for the club.
			startDate = util.StartOfDay(now)
		}

		if next == nil {
			// Valid terminal outcome: commit the archival (if any) and clear
			// the cached end date so the due-club scan stops matching.
			if res.Archived {
				if err := tx.SetClubCurrentEnd(clubID, time.Time{}); err != nil {
					return fmt.Errorf("clearing club end date: %w", err)
				}
			}
			res.Reason = ReasonNoSuggestions
			return nil
		}

		endDate := movieEndDate(startDate, club.RotationIntervalWeeks)
		movie := &models.Movie{
			ImdbID:              next.ImdbID,
			Status:              models.StatusActive,
			StartDate:           startDate,
			EndDate:             endDate,
			SuggestedByUserID:   next.UserID,
			SuggestedByUserName: next.UserName,
			LikedBy:             []string{},
			DislikedBy:          []string{},
			CollectedBy:         []string{},
		}
		movieID, err := tx.CreateMovie(clubID, movie)
		if err != nil {
			return fmt.Errorf("creating movie: %w", err)
		}
		if err := tx.DeleteSuggestion(clubID, next.ID); err != nil {
			return fmt.Errorf("consuming suggestion %s: %w", next.ID, err)
		}
		if err := tx.SetClubCurrentEnd(clubID, endDate); err != nil {
			return fmt.Errorf("updating club end date: %w", err)
		}

		res.Rotated = true
		res.NewMovieID = movieID
		ev = &models.Event{
			Type:       models.EventMovieRotated,
			ClubID:     clubID,
			MovieID:    movieID,
			ActorID:    next.UserID,
			ActorName:  next.UserName,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	// Delivery is detached from the committed rotation; failures are the
	// notifier's to log.
	if ev != nil {
		e.notifier.Publish(*ev)
	}
	return res, nil
}

// movieEndDate computes the end of a watch window starting at startDate. The
// window spans interval*7 days inclusive of the start day, so a two-week
// window starting Jan 15 ends Jan 28 at end of day.
func movieEndDate(startDate time.Time, intervalWeeks int) time.Time {
	return util.EndOfDay(startDate.AddDate(0, 0, intervalWeeks*7-1))
}
