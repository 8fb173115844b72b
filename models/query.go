package models

import (
	"math"
	"strings"
)

const (
	// DefaultPageSize applies when a query does not ask for a page size.
	DefaultPageSize = 10
	// MaxPageSize caps page sizes requested by callers.
	MaxPageSize = 100
	// MaxPage keeps (page-1)*pageSize inside int for any allowed page size.
	MaxPage = math.MaxInt / MaxPageSize
)

// PostSortField is an application-level sort key for post lists.
type PostSortField string

const (
	SortByPublishedAt PostSortField = "publishedAt"
	SortByViewCount   PostSortField = "viewCount"
	SortByTitle       PostSortField = "title"
	SortByCreatedAt   PostSortField = "createdAt"
)

var sortColumns = map[PostSortField]string{
	SortByPublishedAt: "published_at",
	SortByViewCount:   "view_count",
	SortByTitle:       "title",
	SortByCreatedAt:   "created_at",
}

// ParseSortField accepts both the application names and the column names.
func ParseSortField(s string) (PostSortField, bool) {
	s = strings.TrimSpace(s)
	for field, column := range sortColumns {
		if s == string(field) || s == column {
			return field, true
		}
	}
	return "", false
}

// Column returns the database column backing the sort key.
func (f PostSortField) Column() string {
	if c, ok := sortColumns[f]; ok {
		return c
	}
	return sortColumns[SortByPublishedAt]
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PostQuery describes a filtered, sorted, paginated post listing. Both data paths
// accept it and must produce the same page for the same query.
type PostQuery struct {
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	Status       PostStatus    `json:"status"`
	CategorySlug string        `json:"categorySlug"`
	TagSlug      string        `json:"tagSlug"`
	AuthorID     string        `json:"authorId"`
	Search       string        `json:"search"`
	OrderBy      PostSortField `json:"orderBy"`
	Order        SortOrder     `json:"order"`
}

// Normalize fills defaults and clamps out-of-range values. defaultPageSize <= 0 falls
// back to DefaultPageSize.
func (q PostQuery) Normalize(defaultPageSize int) PostQuery {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	q.Page = clampPage(q.Page)
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Status == "" {
		q.Status = PostStatusPublished
	}
	if _, ok := sortColumns[q.OrderBy]; !ok {
		q.OrderBy = SortByPublishedAt
	}
	if q.Order != SortAsc {
		q.Order = SortDesc
	}
	q.CategorySlug = strings.TrimSpace(q.CategorySlug)
	q.TagSlug = strings.TrimSpace(q.TagSlug)
	q.AuthorID = strings.TrimSpace(q.AuthorID)
	// '*' is a wildcard in PostgREST patterns and cannot be escaped there.
	q.Search = strings.TrimSpace(strings.ReplaceAll(q.Search, "*", ""))
	return q
}

// FiltersStatus reports whether the query restricts posts by status.
func (q PostQuery) FiltersStatus() bool {
	return q.Status != "" && q.Status != PostStatusAll
}

// Offset is the zero-based index of the first row on the page.
func (q PostQuery) Offset() int {
	return (clampPage(q.Page) - 1) * q.PageSize
}

// PaginationRange returns the inclusive zero-based row range [start, end] of a page.
func PaginationRange(page, pageSize int) (int, int) {
	start := (clampPage(page) - 1) * pageSize
	return start, start + pageSize - 1
}

func clampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}
