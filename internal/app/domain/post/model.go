package post

import "time"

// Post is a discussion entry on the community feed.
//
// LikedBy is a set semantically (a user id appears at most once) but is
// serialized as an array for wire compatibility.
type Post struct {
	ID       string    `json:"id"`
	Author   string    `json:"author"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category string    `json:"category,omitempty"`
	Image    string    `json:"image,omitempty"`
	Likes    int       `json:"likes"`
	LikedBy  []string  `json:"likedBy"`
	Comments []Comment `json:"comments"`
	Views    int       `json:"views"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Comment lives inside its parent post and is not independently addressable.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedByUser reports whether the given user id is in the like set.
func (p Post) LikedByUser(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Data is the payload accepted by the API when creating or editing a post.
type Data struct {
	Author   string `json:"author,omitempty"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}
