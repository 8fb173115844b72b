package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusArchived  PostStatus = "ARCHIVED"
	// PostStatusAll disables status filtering in a PostQuery.
	PostStatusAll PostStatus = "ALL"
)

// Valid reports whether s is a storable status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post is a blog article written by one user and optionally filed under a category.
type Post struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Excerpt     *string    `gorm:"type:text" json:"excerpt"`
	CoverImage  *string    `gorm:"column:cover_image;size:512" json:"coverImage"`
	Status      PostStatus `gorm:"size:16;not null;default:'DRAFT';index" json:"status"`
	AuthorID    string     `gorm:"column:author_id;type:varchar(36);not null;index" json:"authorId"`
	CategoryID  *string    `gorm:"column:category_id;type:varchar(36);index" json:"categoryId"`
	ViewCount   int64      `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	PublishedAt *time.Time `gorm:"column:published_at;index" json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"-"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"-"`
	Tags        []PostTag  `gorm:"foreignKey:PostID" json:"-"`
	Comments    []Comment  `gorm:"foreignKey:PostID" json:"-"`
}

func (Post) TableName() string { return "posts" }

// BeforeCreate assigns a UUID and timestamps when not provided.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// TagRef wraps a tag the way the join rows are embedded in post payloads.
type TagRef struct {
	Tag Tag `json:"tag"`
}

// PostWithRelations is a post together with its author, category and tags.
type PostWithRelations struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     *string    `json:"excerpt"`
	CoverImage  *string    `json:"coverImage"`
	Status      PostStatus `json:"status"`
	AuthorID    string     `json:"authorId"`
	CategoryID  *string    `json:"categoryId"`
	ViewCount   int64      `json:"viewCount"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      UserBrief  `json:"author"`
	Category    *Category  `json:"category"`
	Tags        []TagRef   `json:"tags"`
}

// WithRelations shapes a loaded post. Relations that were not preloaded come out empty.
func (p Post) WithRelations() PostWithRelations {
	out := PostWithRelations{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		Excerpt:     p.Excerpt,
		CoverImage:  p.CoverImage,
		Status:      p.Status,
		AuthorID:    p.AuthorID,
		CategoryID:  p.CategoryID,
		ViewCount:   p.ViewCount,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Author:      p.Author.Brief(),
		Category:    p.Category,
		Tags:        make([]TagRef, 0, len(p.Tags)),
	}
	for _, pt := range p.Tags {
		out.Tags = append(out.Tags, TagRef{Tag: pt.Tag})
	}
	return out
}

// PopularPost is a published post ranked by its number of comments.
type PopularPost struct {
	PostWithRelations
	CommentCount int64 `json:"commentCount"`
}

// PostStats aggregates counters shown on the home pages.
type PostStats struct {
	TotalPosts      int64 `json:"totalPosts"`
	PublishedPosts  int64 `json:"publishedPosts"`
	DraftPosts      int64 `json:"draftPosts"`
	ArchivedPosts   int64 `json:"archivedPosts"`
	TotalViews      int64 `json:"totalViews"`
	TotalComments   int64 `json:"totalComments"`
	TotalCategories int64 `json:"totalCategories"`
	TotalTags       int64 `json:"totalTags"`
}
