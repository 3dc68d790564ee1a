package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ChatRoom/pkg/ctxmeta"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenIDUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := GenID()
		require.Greater(t, id, int64(0))
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
	assert.NotEmpty(t, GenIDString())
}

func TestInitSnowflakeRejectsBadNode(t *testing.T) {
	require.Error(t, InitSnowflake(-1))
}

func TestTraceLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromCtx string
	r := gin.New()
	r.Use(TraceLogger())
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = ctxmeta.TraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("reuse_upstream_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderXRequestID, "upstream-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "upstream-id", w.Header().Get(HeaderXRequestID))
		assert.Equal(t, "upstream-id", fromCtx)
	})

	t.Run("generate_when_missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
		assert.Equal(t, w.Header().Get(HeaderXRequestID), fromCtx)
	})
}
