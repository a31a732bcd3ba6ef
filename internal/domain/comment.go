package domain

import "time"

// AuthorType distinguishes who wrote a comment.
type AuthorType string

const (
	AuthorTypeCustomer AuthorType = "customer"
	AuthorTypeTeam     AuthorType = "team"
)

// Comment is one message in an order's append-only thread. Internal comments
// are staff-only notes and never cross the public surface.
type Comment struct {
	ID         string     `firestore:"-" json:"id"`
	AuthorType AuthorType `firestore:"authorType" json:"author_type"`
	AuthorName string     `firestore:"authorName,omitempty" json:"author_name,omitempty"`
	Text       string     `firestore:"text" json:"text"`
	Internal   bool       `firestore:"internal" json:"-"`
	CreatedAt  time.Time  `firestore:"createdAt" json:"created_at"`
}
