package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cppla/dualfetch/models"
)

// Timestamp accepts the timestamp renderings PostgREST emits for timestamp and
// timestamptz columns; the former carry no zone and are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// Row shapes mirror the snake_case columns served by PostgREST.

type UserBriefRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type CategoryRow struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	SortOrder   int     `json:"sort_order"`
}

type TagRow struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Color *string `json:"color"`
}

type PostTagRow struct {
	PostID string  `json:"post_id,omitempty"`
	TagID  string  `json:"tag_id,omitempty"`
	Tag    *TagRow `json:"tag,omitempty"`
}

type PostRow struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     *string       `json:"excerpt"`
	CoverImage  *string       `json:"cover_image"`
	Status      string        `json:"status"`
	AuthorID    string        `json:"author_id"`
	CategoryID  *string       `json:"category_id"`
	ViewCount   int64         `json:"view_count"`
	PublishedAt *Timestamp    `json:"published_at"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   Timestamp     `json:"updated_at"`
	Author      *UserBriefRow `json:"author,omitempty"`
	Category    *CategoryRow  `json:"category,omitempty"`
	Tags        []PostTagRow  `json:"tags,omitempty"`
}

type CommentRow struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	PostID    string        `json:"post_id"`
	AuthorID  string        `json:"author_id"`
	ParentID  *string       `json:"parent_id"`
	CreatedAt Timestamp     `json:"created_at"`
	UpdatedAt Timestamp     `json:"updated_at"`
	Author    *UserBriefRow `json:"author,omitempty"`
}

// Embedded projections. Author embeds are hinted by fk column, not constraint name.
const (
	userBriefColumns = "id,name,avatar_url"
	categoryColumns  = "id,name,slug,description,sort_order"
	tagColumns       = "id,name,slug,color"

	postListSelect = "*," +
		"author:users!author_id(" + userBriefColumns + ")," +
		"category:categories(" + categoryColumns + ")," +
		"tags:post_tags(tag:tags(" + tagColumns + "))"
	postDetailSelect = "*," +
		"author:users!author_id(" + userBriefColumns + ")," +
		"category:categories(" + categoryColumns + ")"
	postTagSelect = "tag:tags(" + tagColumns + ")"
	commentSelect = "*,author:users!author_id(" + userBriefColumns + ")"
)

func toUserBrief(r *UserBriefRow) models.UserBrief {
	if r == nil {
		return models.UserBrief{}
	}
	return models.UserBrief{ID: r.ID, Name: r.Name, AvatarURL: r.AvatarURL}
}

func toCategory(r CategoryRow) models.Category {
	return models.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		SortOrder:   r.SortOrder,
	}
}

func toTag(r TagRow) models.Tag {
	return models.Tag{ID: r.ID, Name: r.Name, Slug: r.Slug, Color: r.Color}
}

func toTagRefs(rows []PostTagRow) []models.TagRef {
	out := make([]models.TagRef, 0, len(rows))
	for _, pt := range rows {
		if pt.Tag != nil {
			out = append(out, models.TagRef{Tag: toTag(*pt.Tag)})
		}
	}
	return out
}

func toPost(r PostRow) models.PostWithRelations {
	p := models.PostWithRelations{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		CoverImage:  r.CoverImage,
		Status:      models.PostStatus(r.Status),
		AuthorID:    r.AuthorID,
		CategoryID:  r.CategoryID,
		ViewCount:   r.ViewCount,
		PublishedAt: r.PublishedAt.ptr(),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
		Author:      toUserBrief(r.Author),
		Tags:        toTagRefs(r.Tags),
	}
	if r.Category != nil {
		c := toCategory(*r.Category)
		p.Category = &c
	}
	return p
}

func toComment(r CommentRow) models.CommentWithAuthor {
	return models.CommentWithAuthor{
		ID:        r.ID,
		Content:   r.Content,
		PostID:    r.PostID,
		AuthorID:  r.AuthorID,
		ParentID:  r.ParentID,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
		Author:    toUserBrief(r.Author),
	}
}
