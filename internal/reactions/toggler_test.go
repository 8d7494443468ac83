package reactions

import (
	"context"
	"errors"
	"testing"

	"github.com/movieclubhq/movieclub-server/internal/models"
)

type mockMovieStore struct {
	movie *models.Movie
	err   error
}

func (s *mockMovieStore) RunMovieUpdate(_ context.Context, _, movieID string, fn func(m *models.Movie) error) error {
	if s.err != nil {
		return s.err
	}
	if s.movie == nil || s.movie.ID != movieID {
		return models.ErrMovieNotFound
	}
	return fn(s.movie)
}

type mockNotifier struct {
	events []models.Event
}

func (n *mockNotifier) Publish(ev models.Event) {
	n.events = append(n.events, ev)
}

func activeMovie() *models.Movie {
	return &models.Movie{
		ID:          "movie-1",
		Status:      models.StatusActive,
		LikedBy:     []string{},
		DislikedBy:  []string{},
		CollectedBy: []string{},
	}
}

// checkParity asserts the counter/set and mutual-exclusivity invariants.
func checkParity(t *testing.T, m *models.Movie) {
	t.Helper()
	if m.Likes != len(m.LikedBy) {
		t.Errorf("likes = %d but |likedBy| = %d", m.Likes, len(m.LikedBy))
	}
	if m.Dislikes != len(m.DislikedBy) {
		t.Errorf("dislikes = %d but |dislikedBy| = %d", m.Dislikes, len(m.DislikedBy))
	}
	for _, u := range m.LikedBy {
		if models.ContainsUser(m.DislikedBy, u) {
			t.Errorf("user %s in both likedBy and dislikedBy", u)
		}
	}
}

func TestReact_LikeThenUnlike(t *testing.T) {
	store := &mockMovieStore{movie: activeMovie()}
	tog := NewToggler(store, &mockNotifier{})

	state, err := tog.React(context.Background(), "club-1", "movie-1", "u1", true)
	if err != nil {
		t.Fatalf("React() error = %v", err)
	}
	if !state.Liked || state.Disliked {
		t.Errorf("After like: %+v, want liked only", state)
	}
	checkParity(t, store.movie)

	// Idempotence pair: the second identical call restores the original state.
	state, err = tog.React(context.Background(), "club-1", "movie-1", "u1", true)
	if err != nil {
		t.Fatalf("React() error = %v", err)
	}
	if state.Liked || state.Disliked {
		t.Errorf("After un-like: %+v, want neither", state)
	}
	if store.movie.Likes != 0 || len(store.movie.LikedBy) != 0 {
		t.Errorf("Movie not back to original state: %+v", store.movie)
	}
	checkParity(t, store.movie)
}

func TestReact_LikeThenDislikeMovesUser(t *testing.T) {
	store := &mockMovieStore{movie: activeMovie()}
	tog := NewToggler(store, &mockNotifier{})

	if _, err := tog.React(context.Background(), "club-1", "movie-1", "u1", true); err != nil {
		t.Fatal(err)
	}
	state, err := tog.React(context.Background(), "club-1", "movie-1", "u1", false)
	if err != nil {
		t.Fatal(err)
	}
	if state.Liked || !state.Disliked {
		t.Errorf("After switch: %+v, want disliked only", state)
	}

	m := store.movie
	if m.Likes != 0 || m.Dislikes != 1 {
		t.Errorf("Counters = %d/%d, want 0/1", m.Likes, m.Dislikes)
	}
	if len(m.LikedBy) != 0 || len(m.DislikedBy) != 1 || m.DislikedBy[0] != "u1" {
		t.Errorf("Sets = %v/%v, want []/[u1]", m.LikedBy, m.DislikedBy)
	}
	checkParity(t, m)
}

func TestReact_IndependentUsers(t *testing.T) {
	store := &mockMovieStore{movie: activeMovie()}
	tog := NewToggler(store, &mockNotifier{})

	for _, u := range []string{"u1", "u2", "u3"} {
		if _, err := tog.React(context.Background(), "club-1", "movie-1", u, true); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := tog.React(context.Background(), "club-1", "movie-1", "u2", false); err != nil {
		t.Fatal(err)
	}

	m := store.movie
	if m.Likes != 2 || m.Dislikes != 1 {
		t.Errorf("Counters = %d/%d, want 2/1", m.Likes, m.Dislikes)
	}
	checkParity(t, m)
}

func TestReact_MovieNotFound(t *testing.T) {
	store := &mockMovieStore{}
	tog := NewToggler(store, &mockNotifier{})
	_, err := tog.React(context.Background(), "club-1", "missing", "u1", true)
	if !errors.Is(err, models.ErrMovieNotFound) {
		t.Fatalf("React() error = %v, want ErrMovieNotFound", err)
	}
}

func TestReact_PublishesEvent(t *testing.T) {
	store := &mockMovieStore{movie: activeMovie()}
	notif := &mockNotifier{}
	tog := NewToggler(store, notif)

	if _, err := tog.React(context.Background(), "club-1", "movie-1", "u1", true); err != nil {
		t.Fatal(err)
	}
	if len(notif.events) != 1 || notif.events[0].Type != models.EventReacted {
		t.Errorf("Expected one reacted event, got %+v", notif.events)
	}
}

func TestCollect_TogglePair(t *testing.T) {
	store := &mockMovieStore{movie: activeMovie()}
	notif := &mockNotifier{}
	tog := NewToggler(store, notif)

	collected, err := tog.Collect(context.Background(), "club-1", "movie-1", "u1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !collected || len(store.movie.CollectedBy) != 1 {
		t.Errorf("After collect: %v", store.movie.CollectedBy)
	}
	if len(notif.events) != 1 || notif.events[0].Type != models.EventCollected {
		t.Errorf("Expected collected event, got %+v", notif.events)
	}

	collected, err = tog.Collect(context.Background(), "club-1", "movie-1", "u1")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if collected || len(store.movie.CollectedBy) != 0 {
		t.Errorf("After un-collect: %v", store.movie.CollectedBy)
	}
	// Un-collecting is not announced.
	if len(notif.events) != 1 {
		t.Errorf("Expected no event for un-collect, got %+v", notif.events)
	}
}
