package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/dualfetch/models"
)

// GetComments returns every comment on a post, oldest first, replies included.
func (s *Store) GetComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]models.CommentWithAuthor, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.WithAuthor())
	}
	return out, nil
}

// GetCommentsWithReplies returns the top-level comments of a post with replies attached.
func (s *Store) GetCommentsWithReplies(ctx context.Context, postID string) ([]models.CommentWithReplies, error) {
	flat, err := s.GetComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return models.NestComments(flat), nil
}

func (s *Store) GetCommentCount(ctx context.Context, postID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (models.CommentWithAuthor, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&c).Error; err != nil {
		return models.CommentWithAuthor{}, notFound("comment", err)
	}
	return c.WithAuthor(), nil
}

// CreateComment stores a comment on postID and returns it with its author. A parent, when
// given, must be a top-level comment on the same post.
func (s *Store) CreateComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.CommentWithAuthor{}, models.ErrInvalidComment
	}

	db := s.db.WithContext(ctx)
	if err := db.Select("id").Where("id = ?", postID).First(&models.Post{}).Error; err != nil {
		return models.CommentWithAuthor{}, notFound("post", err)
	}
	if err := db.Select("id").Where("id = ?", in.AuthorID).First(&models.User{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CommentWithAuthor{}, models.ErrInvalidAuthor
		}
		return models.CommentWithAuthor{}, fmt.Errorf("load author: %w", err)
	}

	var parentID *string
	if in.ParentID != nil && *in.ParentID != "" {
		var parent models.Comment
		if err := db.Where("id = ?", *in.ParentID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.CommentWithAuthor{}, ErrInvalidParent
			}
			return models.CommentWithAuthor{}, fmt.Errorf("load parent comment: %w", err)
		}
		if parent.PostID != postID || parent.ParentID != nil {
			return models.CommentWithAuthor{}, ErrInvalidParent
		}
		parentID = &parent.ID
	}

	comment := models.Comment{
		Content:  content,
		PostID:   postID,
		AuthorID: in.AuthorID,
		ParentID: parentID,
	}
	if err := db.Create(&comment).Error; err != nil {
		return models.CommentWithAuthor{}, fmt.Errorf("create comment: %w", err)
	}
	return s.GetComment(ctx, comment.ID)
}
