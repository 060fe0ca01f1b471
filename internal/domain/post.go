package domain

import "time"

// Author holds display fields resolved from the owning user for client
// convenience.
type Author struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Comment is an append-only entry attached to a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"-"`
	UserID    string    `json:"-"`
	Author    Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a published story. AuthorID is set once at creation and is
// the sole authority for mutation rights.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"-"`
	Author    Author    `json:"author"`
	Comments  []Comment `json:"comments"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostPatch carries the optional fields of a partial update. Nil means
// leave unchanged.
type PostPatch struct {
	Title   *string
	Content *string
}
