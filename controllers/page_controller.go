package controllers

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/middleware"
	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/utils"
)

const (
	// listPageSize is the number of post cards on a list page.
	listPageSize     = 9
	homeRecentPosts  = 6
	homePopularPosts = 5
)

// PageController renders the HTML pages of one route group.
type PageController struct {
	source     BlogSource
	base       string
	mode       string
	label      string
	lead       string
	optimistic bool
}

// NewServerPages renders pages from the ORM path. Comments are posted as a form and
// answered with a redirect.
func NewServerPages(source BlogSource) *PageController {
	return &PageController{
		source: source,
		base:   "/server",
		mode:   "server",
		label:  "Server (ORM)",
		lead:   "Every page is queried through gorm and rendered before it is sent.",
	}
}

// NewClientPages renders pages from the PostgREST path. Comments are submitted to the
// JSON API and shown optimistically.
func NewClientPages(source BlogSource) *PageController {
	return &PageController{
		source:     source,
		base:       "/client",
		mode:       "client",
		label:      "Client (PostgREST)",
		lead:       "Every page is queried through the PostgREST interface and shaped into the same models.",
		optimistic: true,
	}
}

func (p *PageController) data(title string) gin.H {
	return gin.H{
		"Title":     title,
		"Base":      p.base,
		"Mode":      p.mode,
		"ModeLabel": p.label,
	}
}

// renderError shows the load failed panel with the status ErrorStatus assigns to err.
func (p *PageController) renderError(ctx *gin.Context, err error) {
	status, _ := utils.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		utils.Sugar.Errorw("page load failed", "path", ctx.Request.URL.Path, "error", err)
	}
	data := p.data("Load failed")
	data["Message"] = err.Error()
	ctx.HTML(status, "error.html", data)
}

// Home shows stats, categories and recent posts, loaded concurrently.
func (p *PageController) Home(ctx *gin.Context) {
	var (
		stats      models.PostStats
		recent     []models.PostWithRelations
		categories []models.CategoryWithPostCount
		popular    []models.PopularPost
	)
	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() (err error) {
		stats, err = p.source.GetStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = p.source.GetRecentPosts(gctx, homeRecentPosts)
		return err
	})
	g.Go(func() (err error) {
		categories, err = p.source.ListCategoriesWithPostCount(gctx)
		return err
	})
	if ps, ok := p.source.(popularSource); ok {
		g.Go(func() (err error) {
			popular, err = ps.GetPopularPosts(gctx, homePopularPosts)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		p.renderError(ctx, err)
		return
	}

	data := p.data("Home")
	data["Lead"] = p.lead
	data["Stats"] = stats
	data["Recent"] = recent
	data["Categories"] = categories
	data["Popular"] = popular
	ctx.HTML(http.StatusOK, "home.html", data)
}

// Posts lists published posts, nine per page, optionally within one category.
func (p *PageController) Posts(ctx *gin.Context) {
	page, _ := parsePagination(ctx.Query("page"), "")
	category := strings.TrimSpace(ctx.Query("category"))
	q := models.PostQuery{
		Page:         page,
		PageSize:     listPageSize,
		Status:       models.PostStatusPublished,
		CategorySlug: category,
	}

	var (
		result     models.PaginatedResult[models.PostWithRelations]
		categories []models.CategoryWithPostCount
	)
	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() (err error) {
		result, err = p.source.ListPosts(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		categories, err = p.source.ListCategoriesWithPostCount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.renderError(ctx, err)
		return
	}

	data := p.data("Posts")
	data["Result"] = result
	data["Categories"] = categories
	data["Category"] = category
	for _, c := range categories {
		if c.Slug == category {
			data["CategoryName"] = c.Name
			data["Title"] = c.Name
		}
	}
	ctx.HTML(http.StatusOK, "posts.html", data)
}

// Post renders one post with its comment threads. The view is counted by
// middleware.PostViewRecorder after the page has been written.
func (p *PageController) Post(ctx *gin.Context) {
	post, err := p.source.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		p.renderError(ctx, err)
		return
	}

	var (
		comments []models.CommentWithAuthor
		users    []models.UserBrief
		content  template.HTML
	)
	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() (err error) {
		comments, err = p.source.ListComments(gctx, post.ID)
		return err
	})
	g.Go(func() (err error) {
		users, err = p.source.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		content, err = utils.RenderMarkdown(post.Content)
		if err != nil {
			return fmt.Errorf("render post content: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.renderError(ctx, err)
		return
	}

	data := p.data(post.Title)
	data["Post"] = post
	data["Content"] = content
	data["Comments"] = models.NestComments(comments)
	data["CommentCount"] = len(comments)
	data["Users"] = users
	data["Optimistic"] = p.optimistic
	data["CommentError"] = ctx.Query("comment_error")
	middleware.MarkPostViewed(ctx, post.ID)
	ctx.HTML(http.StatusOK, "post.html", data)
}

// SubmitComment handles the comment form of the server group and redirects back to the
// post, carrying a validation message in the query string when the comment is rejected.
func (p *PageController) SubmitComment(ctx *gin.Context) {
	post, err := p.source.GetPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		p.renderError(ctx, err)
		return
	}
	target := fmt.Sprintf("%s/posts/%s", p.base, post.ID)

	var in models.NewComment
	if err := ctx.ShouldBind(&in); err != nil {
		ctx.Redirect(http.StatusSeeOther, target+"?comment_error="+url.QueryEscape("content and author are required"))
		return
	}
	in.Content = utils.SanitizeText(in.Content)

	if _, err := p.source.AddComment(ctx.Request.Context(), post.ID, in); err != nil {
		if status, _ := utils.ErrorStatus(err); status >= http.StatusInternalServerError {
			p.renderError(ctx, err)
			return
		}
		ctx.Redirect(http.StatusSeeOther, target+"?comment_error="+url.QueryEscape(err.Error()))
		return
	}
	ctx.Redirect(http.StatusSeeOther, target+"#comment-list")
}

// Categories lists categories with post counts and the tag cloud.
func (p *PageController) Categories(ctx *gin.Context) {
	var (
		categories []models.CategoryWithPostCount
		tags       []models.TagWithPostCount
	)
	tc, counted := p.source.(tagCountSource)

	g, gctx := errgroup.WithContext(ctx.Request.Context())
	g.Go(func() (err error) {
		categories, err = p.source.ListCategoriesWithPostCount(gctx)
		return err
	})
	g.Go(func() error {
		if counted {
			var err error
			tags, err = tc.GetTagsWithPostCount(gctx)
			return err
		}
		plain, err := p.source.ListTags(gctx)
		if err != nil {
			return err
		}
		tags = make([]models.TagWithPostCount, 0, len(plain))
		for _, t := range plain {
			tags = append(tags, models.TagWithPostCount{Tag: t})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.renderError(ctx, err)
		return
	}

	data := p.data("Categories")
	data["Categories"] = categories
	data["Tags"] = tags
	data["TagCounts"] = counted
	ctx.HTML(http.StatusOK, "categories.html", data)
}
