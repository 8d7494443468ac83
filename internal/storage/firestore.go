// Package storage is the Firestore adapter behind the service interfaces.
// Firestore's RunTransaction provides the atomic read-modify-write with
// bounded automatic retry on conflict that the rotation engine and the
// togglers rely on.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/movieclubhq/movieclub-server/internal/models"
	"github.com/movieclubhq/movieclub-server/internal/rotation"
)

const (
	clubsCollection       = "clubs"
	moviesCollection      = "movies"
	suggestionsCollection = "suggestions"
	commentsCollection    = "comments"
)

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) clubDoc(clubID string) *firestore.DocumentRef {
	return c.client.Collection(clubsCollection).Doc(clubID)
}

func (c *Client) moviesCol(clubID string) *firestore.CollectionRef {
	return c.clubDoc(clubID).Collection(moviesCollection)
}

func (c *Client) suggestionsCol(clubID string) *firestore.CollectionRef {
	return c.clubDoc(clubID).Collection(suggestionsCollection)
}

func (c *Client) commentsCol(clubID, movieID string) *firestore.CollectionRef {
	return c.moviesCol(clubID).Doc(movieID).Collection(commentsCollection)
}

// classify maps store-level failures onto the shared error taxonomy. notFound
// replaces codes.NotFound; conflict exhaustion and unavailability become
// models.ErrTransient. Domain sentinels returned from transaction callbacks
// carry codes.Unknown and pass through untouched.
func classify(err, notFound error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return notFound
	case codes.Aborted, codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %v", models.ErrTransient, err)
	}
	return err
}

// --- rotation.Store ---

// RunTransaction runs fn inside one Firestore transaction scoped by whatever
// fn reads and writes. Firestore retries fn on contention before giving up,
// which surfaces here as models.ErrTransient.
func (c *Client) RunTransaction(ctx context.Context, fn func(tx rotation.Tx) error) error {
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(&rotationTx{c: c, tx: tx})
	})
	return classify(err, models.ErrClubNotFound)
}

// rotationTx adapts a live Firestore transaction to the engine's view.
type rotationTx struct {
	c  *Client
	tx *firestore.Transaction
}

func (r *rotationTx) Club(clubID string) (*models.Club, error) {
	doc, err := r.tx.Get(r.c.clubDoc(clubID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrClubNotFound
		}
		return nil, fmt.Errorf("reading club %s: %w", clubID, err)
	}
	return docToClub(doc)
}

func (r *rotationTx) ActiveMovies(clubID string) ([]*models.Movie, error) {
	q := r.c.moviesCol(clubID).Where("status", "==", models.StatusActive)
	iter := r.tx.Documents(q)
	defer iter.Stop()

	var out []*models.Movie
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		m, err := docToMovie(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *rotationTx) OldestSuggestion(clubID string) (*models.Suggestion, error) {
	q := r.c.suggestionsCol(clubID).
		OrderBy("createdAt", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Limit(1)
	iter := r.tx.Documents(q)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return docToSuggestion(doc)
}

func (r *rotationTx) ArchiveMovie(clubID, movieID string, endDate time.Time) error {
	return r.tx.Update(r.c.moviesCol(clubID).Doc(movieID), []firestore.Update{
		{Path: "status", Value: models.StatusArchived},
		{Path: "endDate", Value: endDate},
	})
}

func (r *rotationTx) CreateMovie(clubID string, m *models.Movie) (string, error) {
	ref := r.c.moviesCol(clubID).NewDoc()
	if err := r.tx.Create(ref, m); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (r *rotationTx) DeleteSuggestion(clubID, suggestionID string) error {
	return r.tx.Delete(r.c.suggestionsCol(clubID).Doc(suggestionID))
}

func (r *rotationTx) SetClubCurrentEnd(clubID string, end time.Time) error {
	return r.tx.Update(r.c.clubDoc(clubID), []firestore.Update{
		{Path: "currentMovieEndDate", Value: end},
	})
}

// --- reactions.Store ---

// RunMovieUpdate reads the movie in a transaction, lets fn mutate it and
// writes back only the reaction and collection fields, keeping the write set
// disjoint from the rotation engine's status/date writes.
func (c *Client) RunMovieUpdate(ctx context.Context, clubID, movieID string, fn func(m *models.Movie) error) error {
	ref := c.moviesCol(clubID).Doc(movieID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		m, err := docToMovie(doc)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "likes", Value: m.Likes},
			{Path: "dislikes", Value: m.Dislikes},
			{Path: "likedBy", Value: m.LikedBy},
			{Path: "dislikedBy", Value: m.DislikedBy},
			{Path: "collectedBy", Value: m.CollectedBy},
		})
	})
	return classify(err, models.ErrMovieNotFound)
}

// --- comments.Store ---

func (c *Client) CreateComment(ctx context.Context, clubID, movieID string, comment *models.Comment) (string, error) {
	movieRef := c.moviesCol(clubID).Doc(movieID)
	ref := c.commentsCol(clubID, movieID).NewDoc()
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		movieDoc, err := tx.Get(movieRef)
		if err != nil {
			return err
		}
		m, err := docToMovie(movieDoc)
		if err != nil {
			return err
		}
		if err := tx.Create(ref, comment); err != nil {
			return err
		}
		return tx.Update(movieRef, []firestore.Update{
			{Path: "numComments", Value: m.NumComments + 1},
		})
	})
	if err != nil {
		return "", classify(err, models.ErrMovieNotFound)
	}
	return ref.ID, nil
}

func (c *Client) GetComment(ctx context.Context, clubID, movieID, commentID string) (*models.Comment, error) {
	doc, err := c.commentsCol(clubID, movieID).Doc(commentID).Get(ctx)
	if err != nil {
		return nil, classify(err, models.ErrCommentNotFound)
	}
	return docToComment(doc)
}

func (c *Client) RunCommentUpdate(ctx context.Context, clubID, movieID, commentID string, fn func(comment *models.Comment) error) error {
	ref := c.commentsCol(clubID, movieID).Doc(commentID)
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		comment, err := docToComment(doc)
		if err != nil {
			return err
		}
		if err := fn(comment); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "text", Value: comment.Text},
			{Path: "userName", Value: comment.UserName},
			{Path: "userId", Value: comment.UserID},
			{Path: "likes", Value: comment.Likes},
			{Path: "likedBy", Value: comment.LikedBy},
		})
	})
	return classify(err, models.ErrCommentNotFound)
}

func (c *Client) ListComments(ctx context.Context, clubID, movieID string) ([]models.Comment, error) {
	iter := c.commentsCol(clubID, movieID).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []models.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify(err, models.ErrMovieNotFound)
		}
		comment, err := docToComment(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *comment)
	}
	return out, nil
}

// --- suggestions.Store ---

func (c *Client) CreateSuggestion(ctx context.Context, clubID string, s *models.Suggestion) (string, error) {
	ref := c.suggestionsCol(clubID).NewDoc()
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(c.clubDoc(clubID)); err != nil {
			return err
		}
		existing := tx.Documents(c.suggestionsCol(clubID).
			Where("userId", "==", s.UserID).
			Limit(1))
		defer existing.Stop()
		if _, err := existing.Next(); err != iterator.Done {
			if err != nil {
				return err
			}
			return models.ErrSuggestionExists
		}
		return tx.Create(ref, s)
	})
	if err != nil {
		if errors.Is(err, models.ErrSuggestionExists) {
			return "", err
		}
		return "", classify(err, models.ErrClubNotFound)
	}
	return ref.ID, nil
}

func (c *Client) GetSuggestion(ctx context.Context, clubID, suggestionID string) (*models.Suggestion, error) {
	doc, err := c.suggestionsCol(clubID).Doc(suggestionID).Get(ctx)
	if err != nil {
		return nil, classify(err, models.ErrSuggestionNotFound)
	}
	return docToSuggestion(doc)
}

func (c *Client) DeleteSuggestionDoc(ctx context.Context, clubID, suggestionID string) error {
	_, err := c.suggestionsCol(clubID).Doc(suggestionID).Delete(ctx)
	return classify(err, models.ErrSuggestionNotFound)
}

// --- notifier.MemberSource ---

func (c *Client) ClubMembers(ctx context.Context, clubID string) ([]string, error) {
	doc, err := c.clubDoc(clubID).Get(ctx)
	if err != nil {
		return nil, classify(err, models.ErrClubNotFound)
	}
	club, err := docToClub(doc)
	if err != nil {
		return nil, err
	}
	return club.Members, nil
}

// --- rotation ticker support ---

// DueClubs returns ids of clubs whose cached active-movie end date has
// passed. The denormalized field exists so this scan never touches the
// movies subcollections.
func (c *Client) DueClubs(ctx context.Context, now time.Time) ([]string, error) {
	iter := c.client.Collection(clubsCollection).
		Where("currentMovieEndDate", ">", time.Unix(0, 0)).
		Where("currentMovieEndDate", "<", now).
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify(err, models.ErrClubNotFound)
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// --- snapshot decoding ---

func docToClub(doc *firestore.DocumentSnapshot) (*models.Club, error) {
	var club models.Club
	if err := doc.DataTo(&club); err != nil {
		return nil, fmt.Errorf("decoding club %s: %w", doc.Ref.ID, err)
	}
	club.ID = doc.Ref.ID
	return &club, nil
}

func docToMovie(doc *firestore.DocumentSnapshot) (*models.Movie, error) {
	var m models.Movie
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decoding movie %s: %w", doc.Ref.ID, err)
	}
	m.ID = doc.Ref.ID
	return &m, nil
}

func docToSuggestion(doc *firestore.DocumentSnapshot) (*models.Suggestion, error) {
	var s models.Suggestion
	if err := doc.DataTo(&s); err != nil {
		return nil, fmt.Errorf("decoding suggestion %s: %w", doc.Ref.ID, err)
	}
	s.ID = doc.Ref.ID
	return &s, nil
}

func docToComment(doc *firestore.DocumentSnapshot) (*models.Comment, error) {
	var comment models.Comment
	if err := doc.DataTo(&comment); err != nil {
		return nil, fmt.Errorf("decoding comment %s: %w", doc.Ref.ID, err)
	}
	comment.ID = doc.Ref.ID
	return &comment, nil
}
