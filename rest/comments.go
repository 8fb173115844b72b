package rest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/dualfetch/models"
)

// ListComments returns every comment on a post, oldest first, replies included.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	var rows []CommentRow
	_, err := s.c.From("comments").
		Select(commentSelect).
		Eq("post_id", postID).
		Order("created_at", true).
		Order("id", true).
		Execute(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]models.CommentWithAuthor, 0, len(rows))
	for _, r := range rows {
		out = append(out, toComment(r))
	}
	return out, nil
}

func (s *Store) ListCommentsWithReplies(ctx context.Context, postID string) ([]models.CommentWithReplies, error) {
	flat, err := s.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return models.NestComments(flat), nil
}

// commentInsert carries the columns the table has no server-side default for.
type commentInsert struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	ParentID  *string   `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddComment inserts a comment and returns the stored row with its author. A parent,
// when given, must be a top-level comment on the same post.
func (s *Store) AddComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.CommentWithAuthor{}, models.ErrInvalidComment
	}
	if _, err := s.lookupID(ctx, "posts", "id", postID); err != nil {
		return models.CommentWithAuthor{}, err
	}
	if _, err := s.lookupID(ctx, "users", "id", in.AuthorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.CommentWithAuthor{}, models.ErrInvalidAuthor
		}
		return models.CommentWithAuthor{}, err
	}

	var parentID *string
	if in.ParentID != nil && *in.ParentID != "" {
		var parents []CommentRow
		_, err := s.c.From("comments").
			Select("id,post_id,parent_id").
			Eq("id", *in.ParentID).
			Limit(1).
			Execute(ctx, &parents)
		if err != nil {
			return models.CommentWithAuthor{}, fmt.Errorf("load parent comment: %w", err)
		}
		if len(parents) == 0 || parents[0].PostID != postID || parents[0].ParentID != nil {
			return models.CommentWithAuthor{}, ErrInvalidParent
		}
		parentID = &parents[0].ID
	}

	now := time.Now().UTC()
	row := commentInsert{
		ID:        uuid.NewString(),
		Content:   content,
		PostID:    postID,
		AuthorID:  in.AuthorID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var created CommentRow
	if err := s.c.From("comments").Select(commentSelect).Single().Insert(ctx, row, &created); err != nil {
		return models.CommentWithAuthor{}, fmt.Errorf("create comment: %w", err)
	}
	return toComment(created), nil
}
