package rest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/dualfetch/models"
)

func idsOf(comments []models.CommentWithAuthor) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return out
}

func TestCommentFeed_SubmitSuccess(t *testing.T) {
	store, fake, _, seeded := setupFake(t)
	ctx := context.Background()
	post := seeded.Posts["prisma-orm-complete-guide"]
	bob := seeded.Users["bob@example.com"]

	initial, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	feed := NewCommentFeed(post.ID, initial, store)

	gate := make(chan struct{})
	fake.mu.Lock()
	fake.insertGate = gate
	fake.mu.Unlock()

	var (
		mu        sync.Mutex
		snapshots [][]models.CommentWithAuthor
	)
	feed.OnChange(func(s []models.CommentWithAuthor) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	})

	done := make(chan struct{})
	var created models.CommentWithAuthor
	var submitErr error
	go func() {
		defer close(done)
		created, submitErr = feed.Submit(ctx, models.NewComment{Content: "Great guide", AuthorID: bob.ID})
	}()

	require.Eventually(t, func() bool { return feed.Pending() == 1 }, time.Second, 5*time.Millisecond)
	pending := feed.Snapshot()
	require.Len(t, pending, len(initial)+1)
	placeholder := pending[len(pending)-1]
	assert.True(t, IsOptimisticID(placeholder.ID))
	assert.Equal(t, PlaceholderAuthorName, placeholder.Author.Name)
	assert.Equal(t, "Great guide", placeholder.Content)

	close(gate)
	<-done
	require.NoError(t, submitErr)

	final := feed.Snapshot()
	assert.Equal(t, 0, feed.Pending())
	require.Len(t, final, len(initial)+1)
	for _, c := range final {
		assert.False(t, IsOptimisticID(c.ID))
	}
	matches := 0
	for _, c := range final {
		if c.Content == "Great guide" {
			matches++
			assert.Equal(t, created.ID, c.ID)
			assert.Equal(t, "Bob Wang", c.Author.Name)
		}
	}
	assert.Equal(t, 1, matches)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0], len(initial)+1)
	assert.Equal(t, idsOf(final), idsOf(snapshots[1]))
}

func TestCommentFeed_SubmitFailureRestoresList(t *testing.T) {
	store, fake, _, seeded := setupFake(t)
	ctx := context.Background()
	post := seeded.Posts["getting-started-with-nextjs-15"]
	alice := seeded.Users["alice@example.com"]

	initial, err := store.ListComments(ctx, post.ID)
	require.NoError(t, err)
	feed := NewCommentFeed(post.ID, initial, store)
	before := feed.Snapshot()

	fake.mu.Lock()
	fake.insertErr = &Error{Status: http.StatusConflict, Code: "23503", Message: "insert or update on table \"comments\" violates foreign key constraint"}
	fake.mu.Unlock()

	_, err = feed.Submit(ctx, models.NewComment{Content: "Will not stick", AuthorID: alice.ID})
	var pgErr *Error
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23503", pgErr.Code)

	assert.Equal(t, before, feed.Snapshot())
	assert.Equal(t, 0, feed.Pending())
	assert.Equal(t, 7, fake.rowCount("comments"))
}

type stubInserter struct {
	mu      sync.Mutex
	release chan struct{}
	result  models.CommentWithAuthor
	err     error
	calls   int
}

func (s *stubInserter) AddComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return s.result, s.err
}

func TestCommentFeed_RejectsIncompleteInput(t *testing.T) {
	stub := &stubInserter{}
	feed := NewCommentFeed("post-1", nil, stub)

	for _, in := range []models.NewComment{
		{Content: "", AuthorID: "u1"},
		{Content: "   ", AuthorID: "u1"},
		{Content: "hi", AuthorID: ""},
	} {
		_, err := feed.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrIncompleteComment)
	}
	_, err := NewCommentFeed("", nil, stub).Submit(context.Background(), models.NewComment{Content: "hi", AuthorID: "u1"})
	assert.ErrorIs(t, err, ErrIncompleteComment)

	assert.Empty(t, feed.Snapshot())
	assert.Equal(t, 0, stub.calls)
}

func TestCommentFeed_ReplaceKeepsPlaceholderWithoutDuplicates(t *testing.T) {
	confirmed := models.CommentWithAuthor{ID: "c-2", Content: "second", Author: models.UserBrief{Name: "Bob"}}
	stub := &stubInserter{release: make(chan struct{}), result: confirmed}
	existing := []models.CommentWithAuthor{{ID: "c-1", Content: "first"}}
	feed := NewCommentFeed("post-1", existing, stub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = feed.Submit(context.Background(), models.NewComment{Content: "second", AuthorID: "u2"})
	}()
	require.Eventually(t, func() bool { return feed.Pending() == 1 }, time.Second, 5*time.Millisecond)

	// a reload lands while the insert is in flight and already contains the new row
	feed.Replace([]models.CommentWithAuthor{existing[0], confirmed})
	snap := feed.Snapshot()
	require.Len(t, snap, 3)
	assert.True(t, IsOptimisticID(snap[2].ID))

	close(stub.release)
	<-done
	assert.Equal(t, []string{"c-1", "c-2"}, idsOf(feed.Snapshot()))
}

func TestCommentFeed_ConcurrentSubmissions(t *testing.T) {
	stub := &stubInserter{release: make(chan struct{}), err: errors.New("offline")}
	feed := NewCommentFeed("post-1", nil, stub)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = feed.Submit(context.Background(), models.NewComment{Content: "hi", AuthorID: "u1"})
		}()
	}
	require.Eventually(t, func() bool { return feed.Pending() == 3 }, time.Second, 5*time.Millisecond)

	placeholders := feed.Snapshot()
	require.Len(t, placeholders, 3)
	seen := map[string]bool{}
	for _, c := range placeholders {
		assert.True(t, IsOptimisticID(c.ID))
		seen[c.ID] = true
	}
	assert.Len(t, seen, 3)

	close(stub.release)
	wg.Wait()
	assert.Empty(t, feed.Snapshot())
	assert.Equal(t, 0, feed.Pending())
}

func TestCommentFeed_Threads(t *testing.T) {
	parent := "c-1"
	feed := NewCommentFeed("post-1", []models.CommentWithAuthor{
		{ID: "c-1", Content: "top"},
		{ID: "c-2", Content: "reply", ParentID: &parent},
	}, &stubInserter{})

	threads := feed.Threads()
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "c-2", threads[0].Replies[0].ID)
}
