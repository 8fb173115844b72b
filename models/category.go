package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups posts; a post has at most one.
type Category struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Slug        string  `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description *string `gorm:"type:text" json:"description"`
	SortOrder   int     `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
	Posts       []Post  `gorm:"foreignKey:CategoryID" json:"-"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CategoryWithPostCount carries the number of published posts in the category.
type CategoryWithPostCount struct {
	Category
	PostCount int64 `json:"postCount"`
}
