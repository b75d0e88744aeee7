package model

import "time"

// Post represents a text post owned by exactly one user.
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether the post belongs to the user with the given ID.
func (p *Post) OwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}
