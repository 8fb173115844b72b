package controllers

import (
	"context"

	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/orm"
	"github.com/cppla/dualfetch/rest"
)

// BlogSource is what the page and API handlers need from a data path. *rest.Store
// implements it directly; the ORM store is adapted by ORMSource.
type BlogSource interface {
	ListPosts(ctx context.Context, q models.PostQuery) (models.PaginatedResult[models.PostWithRelations], error)
	GetPost(ctx context.Context, idOrSlug string) (models.PostWithRelations, error)
	IncrementViewCount(ctx context.Context, id string) error
	GetRecentPosts(ctx context.Context, limit int) ([]models.PostWithRelations, error)
	ListComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error)
	AddComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error)
	ListCategoriesWithPostCount(ctx context.Context) ([]models.CategoryWithPostCount, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListUsers(ctx context.Context) ([]models.UserBrief, error)
	GetStats(ctx context.Context) (models.PostStats, error)
}

// popularSource is implemented by paths that can rank posts by comment count.
type popularSource interface {
	GetPopularPosts(ctx context.Context, limit int) ([]models.PopularPost, error)
}

// tagCountSource is implemented by paths that can count posts per tag in one query.
type tagCountSource interface {
	GetTagsWithPostCount(ctx context.Context) ([]models.TagWithPostCount, error)
}

var (
	_ BlogSource     = (*rest.Store)(nil)
	_ BlogSource     = ORMSource{}
	_ popularSource  = ORMSource{}
	_ tagCountSource = ORMSource{}
)

// ORMSource exposes an *orm.Store under the BlogSource method names.
type ORMSource struct {
	*orm.Store
}

func (o ORMSource) ListPosts(ctx context.Context, q models.PostQuery) (models.PaginatedResult[models.PostWithRelations], error) {
	return o.GetPosts(ctx, q)
}

func (o ORMSource) ListComments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	return o.GetComments(ctx, postID)
}

func (o ORMSource) AddComment(ctx context.Context, postID string, in models.NewComment) (models.CommentWithAuthor, error) {
	return o.CreateComment(ctx, postID, in)
}

func (o ORMSource) ListCategoriesWithPostCount(ctx context.Context) ([]models.CategoryWithPostCount, error) {
	return o.GetCategoriesWithPostCount(ctx)
}

func (o ORMSource) ListTags(ctx context.Context) ([]models.Tag, error) {
	return o.GetTags(ctx)
}

func (o ORMSource) ListUsers(ctx context.Context) ([]models.UserBrief, error) {
	return o.GetUsers(ctx)
}

func (o ORMSource) GetStats(ctx context.Context) (models.PostStats, error) {
	return o.GetPostStats(ctx)
}
