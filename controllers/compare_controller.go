package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type featureCard struct {
	Mode     string
	Title    string
	Subtitle string
	Points   []string
	Link     string
	LinkText string
}

type comparisonItem struct {
	Dimension string
	Client    string
	Server    string
	Winner    string // client, server or empty
}

type comparisonSection struct {
	Name  string
	Items []comparisonItem
}

type codeSnippet struct {
	Title  string
	Client string
	Server string
}

type recommendation struct {
	Mode   string
	Title  string
	Points []string
}

var features = []featureCard{
	{
		Mode:     "client",
		Title:    "Client path",
		Subtitle: "PostgREST query builder",
		Points: []string{
			"Queries the auto-generated REST interface",
			"Filters, ranges and counts expressed as URL parameters",
			"Optimistic comment insertion with instant feedback",
			"Suited to highly interactive pages",
		},
		Link:     "/client",
		LinkText: "Open the client demo",
	},
	{
		Mode:     "server",
		Title:    "Server path",
		Subtitle: "gorm ORM with server-rendered pages",
		Points: []string{
			"Queries the database directly",
			"Pages are complete HTML when they leave the server",
			"Joins and aggregates run in one query",
			"Suited to content pages",
		},
		Link:     "/server",
		LinkText: "Open the server demo",
	},
}

var comparisonSections = []comparisonSection{
	{
		Name: "Data fetching",
		Items: []comparisonItem{
			{Dimension: "Rendering", Client: "Shaped from REST rows", Server: "Rendered from ORM models", Winner: "server"},
			{Dimension: "Relation loading", Client: "Embedded resources plus follow-up requests", Server: "Preloads and subqueries", Winner: "server"},
			{Dimension: "Slug filters", Client: "Two-step lookup", Server: "Subquery in one statement", Winner: "server"},
			{Dimension: "Fresh data after writes", Client: "Feed reconciles in place", Server: "Full page reload", Winner: "client"},
		},
	},
	{
		Name: "Developer experience",
		Items: []comparisonItem{
			{Dimension: "Type mapping", Client: "Row structs and transforms", Server: "Models map directly", Winner: "server"},
			{Dimension: "Query composition", Client: "URL operators", Server: "Chained builder", Winner: "server"},
			{Dimension: "Debugging", Client: "Request log", Server: "SQL log"},
			{Dimension: "State handling", Client: "Placeholder bookkeeping", Server: "Stateless handlers", Winner: "server"},
		},
	},
	{
		Name: "Performance",
		Items: []comparisonItem{
			{Dimension: "Search engine friendliness", Client: "Needs server rendering", Server: "Built in", Winner: "server"},
			{Dimension: "Pagination", Client: "No page reload", Server: "Page navigation", Winner: "client"},
			{Dimension: "Optimistic updates", Client: "Supported", Server: "Not supported", Winner: "client"},
			{Dimension: "Application server load", Client: "Lower", Server: "Higher", Winner: "client"},
		},
	},
	{
		Name: "Architecture",
		Items: []comparisonItem{
			{Dimension: "API layer", Client: "Generated by PostgREST", Server: "No API needed", Winner: "server"},
			{Dimension: "Database access", Client: "Through HTTP", Server: "Direct connection", Winner: "server"},
			{Dimension: "Security", Client: "Row level security required", Server: "Protected behind the server", Winner: "server"},
			{Dimension: "Deployment", Client: "Extra service to run", Server: "Single application", Winner: "server"},
		},
	},
}

var codeSnippets = []codeSnippet{
	{
		Title: "List posts in a category",
		Client: `categoryID, err := s.lookupID(ctx, "categories", "slug", slug)
var rows []PostRow
total, err := s.c.From("posts").
	Select(postListSelect).
	Eq("status", "PUBLISHED").
	Eq("category_id", categoryID).
	Order("published_at", false).
	Range(0, 8).
	CountExact().
	Execute(ctx, &rows)`,
		Server: `db.WithContext(ctx).
	Model(&models.Post{}).
	Where("status = ?", models.PostStatusPublished).
	Where("category_id IN (?)", db.Model(&models.Category{}).
		Select("id").Where("slug = ?", slug)).
	Order("published_at desc, id desc").
	Offset(0).Limit(9).
	Find(&posts)`,
	},
	{
		Title: "Add a comment",
		Client: `feed := rest.NewCommentFeed(postID, comments, store)
created, err := feed.Submit(ctx, models.NewComment{
	Content:  content,
	AuthorID: authorID,
})`,
		Server: `comment, err := store.CreateComment(ctx, postID, models.NewComment{
	Content:  content,
	AuthorID: authorID,
})
// then redirect back to the post`,
	},
}

var recommendations = []recommendation{
	{
		Mode:  "client",
		Title: "Choose the client path for",
		Points: []string{
			"Highly interactive applications",
			"Screens that benefit from optimistic updates",
			"Teams already running PostgREST",
			"Admin tools with many small writes",
		},
	},
	{
		Mode:  "server",
		Title: "Choose the server path for",
		Points: []string{
			"Content sites that need search engine visibility",
			"Complex aggregation across tables",
			"Fast first paint",
			"Data that must stay behind the server",
		},
	},
}

// CompareController renders the static pages.
type CompareController struct{}

func NewCompareController() *CompareController { return &CompareController{} }

// Landing links to both route groups and the comparison.
func (c *CompareController) Landing(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", gin.H{"Title": "Home"})
}

// Compare shows the feature cards, comparison table, code and recommendations.
func (c *CompareController) Compare(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "compare.html", gin.H{
		"Title":           "Compare",
		"Features":        features,
		"Sections":        comparisonSections,
		"Snippets":        codeSnippets,
		"Recommendations": recommendations,
	})
}
