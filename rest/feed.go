package rest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/dualfetch/models"
)

// OptimisticPrefix marks ids of comments that exist only locally.
const OptimisticPrefix = "optimistic-"

// PlaceholderAuthorName is shown for a pending comment until the server echoes the author.
const PlaceholderAuthorName = "Loading..."

// ErrIncompleteComment rejects a submission before any placeholder is added.
var ErrIncompleteComment = fmt.Errorf("%w: post, content and author are required", models.ErrInvalidComment)

// IsOptimisticID reports whether id belongs to a placeholder.
func IsOptimisticID(id string) bool {
	return strings.HasPrefix(id, OptimisticPrefix)
}

// CommentInserter persists a comment. *Store satisfies it.
type CommentInserter interface {
	AddComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error)
}

// CommentFeed is the comment list of one post with optimistic submission: a submitted
// comment shows up immediately under a temporary id and is swapped for the stored one
// once the insert returns, or withdrawn if it fails.
type CommentFeed struct {
	postID   string
	inserter CommentInserter

	mu        sync.Mutex
	comments  []models.CommentWithAuthor
	pending   int
	listeners []func([]models.CommentWithAuthor)
}

func NewCommentFeed(postID string, initial []models.CommentWithAuthor, inserter CommentInserter) *CommentFeed {
	comments := make([]models.CommentWithAuthor, len(initial))
	copy(comments, initial)
	return &CommentFeed{postID: postID, inserter: inserter, comments: comments}
}

// OnChange registers fn to receive a snapshot after every change.
func (f *CommentFeed) OnChange(fn func([]models.CommentWithAuthor)) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// Snapshot returns a copy of the current list, placeholders included.
func (f *CommentFeed) Snapshot() []models.CommentWithAuthor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Threads groups the current list into top-level comments and replies.
func (f *CommentFeed) Threads() []models.CommentWithReplies {
	return models.NestComments(f.Snapshot())
}

// Pending is the number of submissions still waiting for the server.
func (f *CommentFeed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Replace swaps in a freshly loaded list. Placeholders still in flight are kept.
func (f *CommentFeed) Replace(confirmed []models.CommentWithAuthor) {
	f.mu.Lock()
	next := make([]models.CommentWithAuthor, 0, len(confirmed)+f.pending)
	next = append(next, confirmed...)
	for _, c := range f.comments {
		if IsOptimisticID(c.ID) {
			next = append(next, c)
		}
	}
	f.comments = next
	f.notifyAndUnlock()
}

// Submit appends a placeholder, inserts the comment and reconciles the list with the
// outcome. Invalid input is rejected before the list changes.
func (f *CommentFeed) Submit(ctx context.Context, in models.NewComment) (models.CommentWithAuthor, error) {
	if f.postID == "" || strings.TrimSpace(in.Content) == "" || in.AuthorID == "" {
		return models.CommentWithAuthor{}, ErrIncompleteComment
	}

	now := time.Now()
	tempID := OptimisticPrefix + uuid.NewString()
	placeholder := models.CommentWithAuthor{
		ID:        tempID,
		Content:   strings.TrimSpace(in.Content),
		PostID:    f.postID,
		AuthorID:  in.AuthorID,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
		Author:    models.UserBrief{ID: in.AuthorID, Name: PlaceholderAuthorName},
	}

	f.mu.Lock()
	f.comments = append(f.comments, placeholder)
	f.pending++
	f.notifyAndUnlock()

	created, err := f.inserter.AddComment(ctx, f.postID, in)

	f.mu.Lock()
	f.pending--
	idx := f.indexLocked(tempID)
	switch {
	case err != nil:
		f.removeLocked(idx)
	case f.indexLocked(created.ID) >= 0:
		// already delivered by Replace
		f.removeLocked(idx)
	case idx >= 0:
		f.comments[idx] = created
	default:
		f.comments = append(f.comments, created)
	}
	f.notifyAndUnlock()

	if err != nil {
		return models.CommentWithAuthor{}, err
	}
	return created, nil
}

func (f *CommentFeed) indexLocked(id string) int {
	for i, c := range f.comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *CommentFeed) removeLocked(idx int) {
	if idx < 0 {
		return
	}
	f.comments = append(f.comments[:idx], f.comments[idx+1:]...)
}

func (f *CommentFeed) snapshotLocked() []models.CommentWithAuthor {
	out := make([]models.CommentWithAuthor, len(f.comments))
	copy(out, f.comments)
	return out
}

// notifyAndUnlock releases f.mu before invoking listeners so they may call back into f.
func (f *CommentFeed) notifyAndUnlock() {
	snap := f.snapshotLocked()
	listeners := make([]func([]models.CommentWithAuthor), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}
