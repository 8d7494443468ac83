package rotation

import (
	"context"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
)

// Store abstracts the transactional document store for rotations.
type Store interface {
	// RunTransaction executes fn atomically. All reads inside fn observe one
	// consistent snapshot; writes are buffered and applied together on commit.
	// The store retries fn on conflict up to its own bounded limit, so fn must
	// be side-effect free outside of Tx.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view handed to the rotation callback. Reads must
// all happen before the first buffered write.
type Tx interface {
	Club(clubID string) (*models.Club, error)
	ActiveMovies(clubID string) ([]*models.Movie, error)
	OldestSuggestion(clubID string) (*models.Suggestion, error)

	ArchiveMovie(clubID, movieID string, endDate time.Time) error
	CreateMovie(clubID string, m *models.Movie) (string, error)
	DeleteSuggestion(clubID, suggestionID string) error
	SetClubCurrentEnd(clubID string, end time.Time) error
}

// Notifier is the fire-and-forget notification fan-out. Implementations must
// never block the caller on delivery or surface delivery errors.
type Notifier interface {
	Publish(ev models.Event)
}
