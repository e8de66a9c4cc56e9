package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/gdgoc-itb/lms-service/internal/metrics"
)

const clientOrigin = "https://lms.gdgoc-itb.dev"

func newMiddlewareRouter() *gin.Engine {
	router := gin.New()
	SetupMiddleware(router, testLogger(), clientOrigin, metrics.NewMetrics())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})
	return router
}

func TestCORSMiddleware(t *testing.T) {
	router := newMiddlewareRouter()

	t.Run("client origin gets credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", clientOrigin)
		rec := serve(router, req)

		assert.Equal(t, clientOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("other origins are not echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(router, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", clientOrigin)
		rec := serve(router, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newMiddlewareRouter()

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := rec.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)
	assert.Contains(t, rec.Body.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	rec = serve(router, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
