package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels posts through the post_tags join table.
type Tag struct {
	ID    string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name  string  `gorm:"size:50;not null" json:"name"`
	Slug  string  `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Color *string `gorm:"size:16" json:"color"`
}

func (Tag) TableName() string { return "tags" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PostTag is the many-to-many join between posts and tags.
type PostTag struct {
	PostID string `gorm:"column:post_id;type:varchar(36);primaryKey" json:"postId"`
	TagID  string `gorm:"column:tag_id;type:varchar(36);primaryKey;index" json:"tagId"`
	Tag    Tag    `gorm:"foreignKey:TagID" json:"tag"`
}

func (PostTag) TableName() string { return "post_tags" }

// TagWithPostCount carries the number of published posts carrying the tag.
type TagWithPostCount struct {
	Tag
	PostCount int64 `json:"postCount"`
}
