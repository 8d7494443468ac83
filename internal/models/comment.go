package models

import "time"

// DeletedPlaceholder replaces the text and author name of a deleted comment.
// Comments are anonymized instead of removed so reply chains stay intact.
const DeletedPlaceholder = "[deleted]"

// Comment is a flat persisted message on a movie. ParentID, when set, points
// at another comment on the same movie.
type Comment struct {
	ID        string    `firestore:"-"`
	UserID    string    `firestore:"userId"`
	UserName  string    `firestore:"userName"`
	Text      string    `firestore:"text" validate:"required,max=4000"`
	CreatedAt time.Time `firestore:"createdAt"`
	ParentID  string    `firestore:"parentId,omitempty"`
	Likes     int       `firestore:"likes" validate:"gte=0"`
	LikedBy   []string  `firestore:"likedBy"`
}

// Anonymize overwrites content and author fields in place, leaving the
// comment's position in the thread untouched.
func (c *Comment) Anonymize() {
	c.Text = DeletedPlaceholder
	c.UserName = DeletedPlaceholder
	c.UserID = ""
}

// CommentNode is the transient tree-positioned form of a comment, rebuilt
// from the flat collection on every read and never persisted.
type CommentNode struct {
	Comment  Comment        `json:"comment"`
	Children []*CommentNode `json:"children,omitempty"`
}
