package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/dualfetch/utils"
)

// ViewedPostKey is the context key a handler sets to the id of the post it rendered.
const ViewedPostKey = "viewed_post_id"

// ViewIncrementer bumps a post's view counter. Both data layers implement it.
type ViewIncrementer interface {
	IncrementViewCount(ctx context.Context, id string) error
}

// PostViewRecorder counts a view once a GET handler has rendered a post successfully.
// Handlers opt in by calling MarkPostViewed. Failures are logged and never reach the client.
func PostViewRecorder(views ViewIncrementer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		id := c.GetString(ViewedPostKey)
		if id == "" {
			return
		}
		if err := views.IncrementViewCount(c.Request.Context(), id); err != nil {
			utils.Sugar.Warnw("record post view failed", "post_id", id, "error", err)
		}
	}
}

// MarkPostViewed tells PostViewRecorder which post the current request displayed.
func MarkPostViewed(c *gin.Context, postID string) {
	c.Set(ViewedPostKey, postID)
}
