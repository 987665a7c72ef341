// Package posts owns the community feed collection, including each post's
// nested like set and comment list.
package posts

import (
	"sync"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/post"
	"github.com/machoraatuti/moringaconnect/internal/app/store"
)

// State is a point-in-time copy of the store.
type State struct {
	Posts     []post.Post
	IsLoading bool
	ErrMess   string
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	life   store.Lifecycle
	posts  []post.Post
	notify func()
}

// New creates an empty store.
func New() *Store { return &Store{} }

// EnableFencing makes the store ignore superseded settlements.
func (s *Store) EnableFencing() {
	s.mu.Lock()
	s.life.EnableFencing()
	s.mu.Unlock()
}

// OnChange registers a callback invoked after every state change.
func (s *Store) OnChange(fn func()) { s.notify = fn }

func (s *Store) changed() {
	if s.notify != nil {
		s.notify()
	}
}

// Pending marks the listing operation in flight and clears any prior error.
func (s *Store) Pending() uint64 {
	s.mu.Lock()
	seq := s.life.BeginLocked()
	s.mu.Unlock()
	s.changed()
	return seq
}

// Reject records a failed settlement.
func (s *Store) Reject(seq uint64, message string) bool {
	s.mu.Lock()
	ok := s.life.RejectLocked(seq, message)
	s.mu.Unlock()
	if ok {
		s.changed()
	}
	return ok
}

// ClearError discards the stored error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.life.ClearErrorLocked()
	s.mu.Unlock()
	s.changed()
}

// ReplaceAll swaps in a freshly fetched collection.
func (s *Store) ReplaceAll(seq uint64, items []post.Post) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.posts = make([]post.Post, len(items))
	for i, p := range items {
		s.posts[i] = clonePost(p)
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Add prepends a newly created post so it tops the feed.
func (s *Store) Add(seq uint64, p post.Post) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	s.posts = append([]post.Post{clonePost(p)}, s.posts...)
	s.mu.Unlock()
	s.changed()
	return true
}

// Patch replaces the post with the matching id with the server's updated
// view. Unknown ids are a no-op.
func (s *Store) Patch(seq uint64, p post.Post) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.posts {
		if s.posts[i].ID == p.ID {
			s.posts[i] = clonePost(p)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// SetLikes patches one post's like count and like set. The set is
// deduplicated; serialization order is preserved. A missing post id is a
// no-op.
func (s *Store) SetLikes(seq uint64, postID string, likes int, likedBy []string) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Likes = likes
			s.posts[i].LikedBy = dedupe(likedBy)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// SetComments replaces one post's comment list with the server's view. A
// missing post id is a no-op.
func (s *Store) SetComments(seq uint64, postID string, comments []post.Comment) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Comments = append([]post.Comment(nil), comments...)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Remove deletes a post by id. Removing an absent id is a no-op.
func (s *Store) Remove(seq uint64, postID string) bool {
	s.mu.Lock()
	if !s.life.SettleLocked(seq) {
		s.mu.Unlock()
		return false
	}
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.changed()
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]post.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = clonePost(p)
	}
	return State{
		Posts:     out,
		IsLoading: s.life.LoadingLocked(),
		ErrMess:   s.life.ErrMessLocked(),
	}
}

func clonePost(p post.Post) post.Post {
	p.LikedBy = append([]string(nil), p.LikedBy...)
	p.Comments = append([]post.Comment(nil), p.Comments...)
	return p
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
