package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/dualfetch/config"
	"github.com/cppla/dualfetch/controllers"
	"github.com/cppla/dualfetch/middleware"
	"github.com/cppla/dualfetch/orm"
	"github.com/cppla/dualfetch/rest"
	"github.com/cppla/dualfetch/utils"
	"github.com/cppla/dualfetch/views"
)

// SetupRouter wires routes, middlewares, and controllers. db backs the server group and
// client backs the client group.
func SetupRouter(db *gorm.DB, client *rest.Client) (*gin.Engine, error) {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	tmpl, err := views.Parse()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	ormStore := orm.NewStore(db)
	restStore := rest.NewStore(client)
	serverSource := controllers.ORMSource{Store: ormStore}

	compare := controllers.NewCompareController()
	serverPages := controllers.NewServerPages(serverSource)
	clientPages := controllers.NewClientPages(restStore)
	commentLimit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	r.GET("/", compare.Landing)
	r.GET("/compare", compare.Compare)
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	server := r.Group("/server")
	server.GET("", serverPages.Home)
	server.GET("/posts", serverPages.Posts)
	server.GET("/posts/:id", middleware.PostViewRecorder(ormStore), serverPages.Post)
	server.POST("/posts/:id/comments", commentLimit, serverPages.SubmitComment)
	server.GET("/categories", serverPages.Categories)

	clientGroup := r.Group("/client")
	clientGroup.GET("", clientPages.Home)
	clientGroup.GET("/posts", clientPages.Posts)
	clientGroup.GET("/posts/:id", middleware.PostViewRecorder(restStore), clientPages.Post)
	clientGroup.GET("/categories", clientPages.Categories)

	api := r.Group("/api/v1")
	api.GET("/config/client", controllers.NewConfigController().GetClientConfig)

	registerAPI(api.Group("/server"), controllers.NewPostController(serverSource), controllers.NewStatsController(serverSource), commentLimit)
	registerAPI(api.Group("/client"), controllers.NewOptimisticPostController(restStore, controllers.NewCommentFeeds(restStore)), controllers.NewStatsController(restStore), commentLimit)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Title": "Not found", "Message": "page not found"})
	})

	return r, nil
}

func registerAPI(g *gin.RouterGroup, posts *controllers.PostController, stats *controllers.StatsController, commentLimit gin.HandlerFunc) {
	g.GET("/posts", posts.ListPosts)
	g.GET("/recent", stats.GetRecentPosts)
	g.GET("/posts/:id", posts.GetPost)
	g.GET("/posts/:id/comments", posts.ListComments)
	g.POST("/posts/:id/comments", commentLimit, posts.CreateComment)
	g.GET("/categories", posts.ListCategories)
	g.GET("/tags", posts.ListTags)
	g.GET("/stats", stats.GetStats)
}
