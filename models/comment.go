package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply to a post, optionally nested one level under another comment.
type Comment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);index;not null" json:"postId"`
	AuthorID  string    `gorm:"column:author_id;type:varchar(36);index;not null" json:"authorId"`
	ParentID  *string   `gorm:"column:parent_id;type:varchar(36);index" json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Replies   []Comment `gorm:"foreignKey:ParentID" json:"-"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	return nil
}

// CommentWithAuthor is a comment with the author projection attached.
type CommentWithAuthor struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    UserBrief `json:"author"`
}

// CommentWithReplies is a top-level comment and its direct replies.
type CommentWithReplies struct {
	CommentWithAuthor
	Replies []CommentWithAuthor `json:"replies"`
}

// WithAuthor shapes a comment whose author has been preloaded.
func (c Comment) WithAuthor() CommentWithAuthor {
	return CommentWithAuthor{
		ID:        c.ID,
		Content:   c.Content,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Author:    c.Author.Brief(),
	}
}

// NewComment is the input for creating a comment on either data path.
type NewComment struct {
	Content  string  `json:"content" form:"content" binding:"required,max=5000"`
	AuthorID string  `json:"authorId" form:"authorId" binding:"required"`
	ParentID *string `json:"parentId,omitempty" form:"parentId"`
}

// NestComments groups a flat, chronologically ordered list into top-level comments and
// their replies. Replies whose parent is missing from the list are dropped.
func NestComments(flat []CommentWithAuthor) []CommentWithReplies {
	out := make([]CommentWithReplies, 0, len(flat))
	index := make(map[string]int, len(flat))
	for _, c := range flat {
		if c.ParentID == nil || *c.ParentID == "" {
			index[c.ID] = len(out)
			out = append(out, CommentWithReplies{CommentWithAuthor: c, Replies: []CommentWithAuthor{}})
		}
	}
	for _, c := range flat {
		if c.ParentID == nil || *c.ParentID == "" {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			out[i].Replies = append(out[i].Replies, c)
		}
	}
	return out
}
