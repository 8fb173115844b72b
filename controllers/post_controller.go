package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/dualfetch/config"
	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/utils"
)

// PostController serves the JSON API of one data path.
type PostController struct {
	source BlogSource
	// feeds is set for the client path; comments then go through an optimistic feed.
	feeds *CommentFeeds
}

// NewPostController creates a PostController whose comments are written directly.
func NewPostController(source BlogSource) *PostController {
	return &PostController{source: source}
}

// NewOptimisticPostController creates a PostController that submits comments through feeds.
func NewOptimisticPostController(source BlogSource, feeds *CommentFeeds) *PostController {
	return &PostController{source: source, feeds: feeds}
}

// ListPosts returns one page of posts.
// Query: page, page_size, status (DRAFT|PUBLISHED|ARCHIVED|ALL), category, tag, author,
// search, order_by, order.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	status := models.PostStatus(strings.ToUpper(strings.TrimSpace(ctx.Query("status"))))
	if status != "" && status != models.PostStatusAll && !status.Valid() {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid status")
		return
	}
	orderBy := models.PostSortField("")
	if raw := ctx.Query("order_by"); raw != "" {
		field, ok := models.ParseSortField(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid order_by")
			return
		}
		orderBy = field
	}

	q := models.PostQuery{
		Page:         page,
		PageSize:     pageSize,
		Status:       status,
		CategorySlug: ctx.Query("category"),
		TagSlug:      ctx.Query("tag"),
		AuthorID:     ctx.Query("author"),
		Search:       ctx.Query("search"),
		OrderBy:      orderBy,
		Order:        models.SortOrder(strings.ToLower(ctx.Query("order"))),
	}
	if q.PageSize == 0 {
		q.PageSize = config.Get().DefaultPageSize
	}

	result, err := p.source.ListPosts(ctx.Request.Context(), q)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// GetPost returns a single post by id or slug.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.source.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// ListComments returns the flat, chronological comment list of a post. On the client
// path the list includes placeholders of submissions still in flight.
func (p *PostController) ListComments(ctx *gin.Context) {
	post, err := p.source.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	comments, err := p.source.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if p.feeds != nil {
		feed := p.feeds.Get(post.ID)
		feed.Replace(comments)
		comments = feed.Snapshot()
	}
	utils.Success(ctx, comments)
}

// CreateComment stores a comment. Accepts JSON or form bodies.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var in models.NewComment
	if err := ctx.ShouldBind(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	in.Content = utils.SanitizeText(in.Content)
	if in.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40001, "content cannot be empty")
		return
	}

	post, err := p.source.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	if p.feeds == nil {
		comment, err := p.source.AddComment(ctx.Request.Context(), post.ID, in)
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		utils.Created(ctx, gin.H{"comment": comment})
		return
	}

	comment, snapshot, err := p.feeds.Submit(ctx.Request.Context(), post.ID, in)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"comment": comment, "comments": snapshot})
}

// ListCategories returns categories with their published post counts.
func (p *PostController) ListCategories(ctx *gin.Context) {
	categories, err := p.source.ListCategoriesWithPostCount(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, categories)
}

// ListTags returns all tags, with post counts where the data path provides them.
func (p *PostController) ListTags(ctx *gin.Context) {
	if tc, ok := p.source.(tagCountSource); ok {
		tags, err := tc.GetTagsWithPostCount(ctx.Request.Context())
		if err != nil {
			utils.Fail(ctx, err)
			return
		}
		utils.Success(ctx, tags)
		return
	}
	tags, err := p.source.ListTags(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, tags)
}

// parsePagination reads page and page size; a missing or invalid size comes back as 0
// so the caller's default applies.
func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 0
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= models.MaxPageSize {
		pageSize = s
	}
	return page, pageSize
}
