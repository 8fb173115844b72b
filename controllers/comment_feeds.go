package controllers

import (
	"context"
	"sync"

	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/rest"
	"github.com/cppla/dualfetch/utils"
)

// CommentStore reads and writes comments. *rest.Store satisfies it.
type CommentStore interface {
	rest.CommentInserter
	ListComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error)
}

// CommentFeeds keeps one optimistic comment feed per post so that concurrent
// submissions on the same post see each other's placeholders.
type CommentFeeds struct {
	store CommentStore

	mu    sync.Mutex
	feeds map[string]*rest.CommentFeed
}

func NewCommentFeeds(store CommentStore) *CommentFeeds {
	return &CommentFeeds{store: store, feeds: map[string]*rest.CommentFeed{}}
}

// Get returns the feed of postID, creating an empty one on first use.
func (f *CommentFeeds) Get(postID string) *rest.CommentFeed {
	f.mu.Lock()
	defer f.mu.Unlock()
	feed, ok := f.feeds[postID]
	if !ok {
		feed = rest.NewCommentFeed(postID, nil, f.store)
		feed.OnChange(func(comments []models.CommentWithAuthor) {
			utils.Sugar.Debugw("comment feed changed", "post_id", postID, "comments", len(comments))
		})
		f.feeds[postID] = feed
	}
	return feed
}

// Submit refreshes the feed from the server, then inserts optimistically. It returns the
// stored comment and the list as it stands after reconciliation.
func (f *CommentFeeds) Submit(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, []models.CommentWithAuthor, error) {
	feed := f.Get(postID)
	current, err := f.store.ListComments(ctx, postID)
	if err != nil {
		return models.CommentWithAuthor{}, nil, err
	}
	feed.Replace(current)

	created, err := feed.Submit(ctx, in)
	if err != nil {
		return models.CommentWithAuthor{}, nil, err
	}
	return created, feed.Snapshot(), nil
}
