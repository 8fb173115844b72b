package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/dualfetch/config"
	"github.com/cppla/dualfetch/database"
	"github.com/cppla/dualfetch/rest"
	"github.com/cppla/dualfetch/utils"
)

func setupRouter(t *testing.T, postgrest http.HandlerFunc) http.Handler {
	t.Helper()
	config.Set(config.AppConfig{GinMode: "test", LogLevel: "error", RateLimitPerMinute: 2})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db))
	_, err = database.Seed(db)
	require.NoError(t, err)

	if postgrest == nil {
		postgrest = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
	srv := httptest.NewServer(postgrest)
	t.Cleanup(srv.Close)

	r, err := SetupRouter(db, rest.NewClient(srv.URL))
	require.NoError(t, err)
	return r
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealthAndStaticPages(t *testing.T) {
	r := setupRouter(t, nil)

	w := serve(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)

	for _, path := range []string{"/", "/compare", "/server", "/server/posts", "/server/categories"} {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, path).Code, path)
	}
}

func TestNoRoute(t *testing.T) {
	r := setupRouter(t, nil)

	w := serve(r, http.MethodGet, "/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 40400, resp.Code)

	w = serve(r, http.MethodGet, "/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "page not found", doc.Find(".error-panel .message").Text())
}

func TestClientPagesReportPostgRESTFailures(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"XX000","message":"upstream exploded"}`))
	})

	w := serve(r, http.MethodGet, "/client/posts")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Contains(t, doc.Find(".error-panel .message").Text(), "upstream exploded")

	w = serve(r, http.MethodGet, "/api/v1/client/stats")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCommentSubmissionIsRateLimited(t *testing.T) {
	r := setupRouter(t, nil)

	codes := map[int]int{}
	for i := 0; i < 3; i++ {
		w := serve(r, http.MethodPost, "/api/v1/server/posts/missing/comments")
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes[http.StatusBadRequest])
	assert.Equal(t, 2, codes[http.StatusTooManyRequests])
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/server/posts", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
