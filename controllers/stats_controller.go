package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/dualfetch/utils"
)

// StatsController provides blog statistics such as post, view and comment counts.
type StatsController struct {
	source BlogSource
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(source BlogSource) *StatsController {
	return &StatsController{source: source}
}

// GetStats returns aggregate statistics for the blog.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.source.GetStats(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, stats)
}

// GetRecentPosts returns the newest published posts; limit defaults to 5.
func (s *StatsController) GetRecentPosts(ctx *gin.Context) {
	_, limit := parsePagination("", ctx.Query("limit"))
	posts, err := s.source.GetRecentPosts(ctx.Request.Context(), limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, posts)
}
