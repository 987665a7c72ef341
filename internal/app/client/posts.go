package client

import (
	"context"
	"strings"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/post"
	"github.com/machoraatuti/moringaconnect/internal/app/gateway"
	"github.com/machoraatuti/moringaconnect/internal/app/runner"
)

// FetchPosts replaces the feed with the server's view.
func (c *Client) FetchPosts(ctx context.Context) error {
	return runner.Run(ctx, c.log, runner.Op[[]post.Post]{
		Store:          "posts",
		Name:           "fetchPosts",
		FailureMessage: "Failed to load posts",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) ([]post.Post, error) {
			raw, err := c.gw.Get(ctx, "posts")
			if err != nil {
				return nil, err
			}
			var items []post.Post
			if err := gateway.Decode(raw, &items); err != nil {
				return nil, err
			}
			return items, nil
		},
		Apply: func(seq uint64, items []post.Post) bool {
			return c.posts.ReplaceAll(seq, items)
		},
	})
}

// CreatePost publishes a post to the top of the feed.
func (c *Client) CreatePost(ctx context.Context, data post.Data) error {
	if strings.TrimSpace(data.Title) == "" {
		return &ValidationError{Field: "title", Message: "required"}
	}
	if strings.TrimSpace(data.Content) == "" {
		return &ValidationError{Field: "content", Message: "required"}
	}
	if strings.TrimSpace(data.Author) == "" {
		return &ValidationError{Field: "author", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[post.Post]{
		Store:          "posts",
		Name:           "createPost",
		FailureMessage: "Failed to create post",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (post.Post, error) {
			raw, err := c.gw.Post(ctx, "posts", data)
			if err != nil {
				return post.Post{}, err
			}
			var created post.Post
			if err := gateway.Decode(raw, &created); err != nil {
				return post.Post{}, err
			}
			return created, nil
		},
		Apply: func(seq uint64, created post.Post) bool {
			return c.posts.Add(seq, created)
		},
	})
}

// EditPost patches a post with the server's updated view. Editing an id the
// store no longer holds settles as a local no-op.
func (c *Client) EditPost(ctx context.Context, postID string, data post.Data) error {
	if strings.TrimSpace(postID) == "" {
		return &ValidationError{Field: "postId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[post.Post]{
		Store:          "posts",
		Name:           "editPost",
		FailureMessage: "Failed to update post",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (post.Post, error) {
			raw, err := c.gw.Patch(ctx, "posts/"+postID, data)
			if err != nil {
				return post.Post{}, err
			}
			var updated post.Post
			if err := gateway.Decode(raw, &updated); err != nil {
				return post.Post{}, err
			}
			return updated, nil
		},
		Apply: func(seq uint64, updated post.Post) bool {
			return c.posts.Patch(seq, updated)
		},
	})
}

// DeletePost removes a post from the feed.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	if strings.TrimSpace(postID) == "" {
		return &ValidationError{Field: "postId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[string]{
		Store:          "posts",
		Name:           "deletePost",
		FailureMessage: "Failed to delete post",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (string, error) {
			if _, err := c.gw.Delete(ctx, "posts/"+postID); err != nil {
				return "", err
			}
			return postID, nil
		},
		Apply: func(seq uint64, id string) bool {
			return c.posts.Remove(seq, id)
		},
	})
}

type likeUpdate struct {
	PostID  string   `json:"postId"`
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

// ToggleLike flips the member's like on a post; the server answers with the
// authoritative count and like set.
func (c *Client) ToggleLike(ctx context.Context, postID, userID string) error {
	if strings.TrimSpace(postID) == "" {
		return &ValidationError{Field: "postId", Message: "required"}
	}
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "userId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[likeUpdate]{
		Store:          "posts",
		Name:           "toggleLike",
		FailureMessage: "Failed to update like",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (likeUpdate, error) {
			raw, err := c.gw.Post(ctx, "posts/"+postID+"/like", map[string]string{"userId": userID})
			if err != nil {
				return likeUpdate{}, err
			}
			var update likeUpdate
			if err := gateway.Decode(raw, &update); err != nil {
				return likeUpdate{}, err
			}
			if update.PostID == "" {
				update.PostID = postID
			}
			return update, nil
		},
		Apply: func(seq uint64, u likeUpdate) bool {
			return c.posts.SetLikes(seq, u.PostID, u.Likes, u.LikedBy)
		},
	})
}

type commentUpdate struct {
	postID   string
	comments []post.Comment
}

// AddComment appends a comment; the server answers with the post's full
// comment list.
func (c *Client) AddComment(ctx context.Context, postID, userID, content string) error {
	if strings.TrimSpace(postID) == "" {
		return &ValidationError{Field: "postId", Message: "required"}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[commentUpdate]{
		Store:          "posts",
		Name:           "addComment",
		FailureMessage: "Failed to add comment",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (commentUpdate, error) {
			raw, err := c.gw.Post(ctx, "posts/"+postID+"/comments", map[string]string{
				"content": content,
				"userId":  userID,
			})
			if err != nil {
				return commentUpdate{}, err
			}
			var comments []post.Comment
			if err := gateway.Decode(raw, &comments); err != nil {
				return commentUpdate{}, err
			}
			return commentUpdate{postID: postID, comments: comments}, nil
		},
		Apply: func(seq uint64, u commentUpdate) bool {
			return c.posts.SetComments(seq, u.postID, u.comments)
		},
	})
}

// DeleteComment removes a comment; the server answers with the post's
// remaining comment list.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	if strings.TrimSpace(postID) == "" {
		return &ValidationError{Field: "postId", Message: "required"}
	}
	if strings.TrimSpace(commentID) == "" {
		return &ValidationError{Field: "commentId", Message: "required"}
	}
	return runner.Run(ctx, c.log, runner.Op[commentUpdate]{
		Store:          "posts",
		Name:           "deleteComment",
		FailureMessage: "Failed to delete comment",
		Transitions:    c.posts,
		Exec: func(ctx context.Context) (commentUpdate, error) {
			raw, err := c.gw.Delete(ctx, "posts/"+postID+"/comments/"+commentID)
			if err != nil {
				return commentUpdate{}, err
			}
			var comments []post.Comment
			if raw != nil {
				if err := gateway.Decode(raw, &comments); err != nil {
					return commentUpdate{}, err
				}
			}
			return commentUpdate{postID: postID, comments: comments}, nil
		},
		Apply: func(seq uint64, u commentUpdate) bool {
			return c.posts.SetComments(seq, u.postID, u.comments)
		},
	})
}

// ClearPostsError discards the posts store error message.
func (c *Client) ClearPostsError() { c.posts.ClearError() }
