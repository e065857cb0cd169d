package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(cm *Compression) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cm.Handler())
	r.GET("/large", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payload": strings.Repeat("abcdef", 500)})
	})
	r.GET("/small", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/binary", func(c *gin.Context) {
		c.Data(http.StatusOK, "image/png", make([]byte, 4096))
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestCompression(t *testing.T) {
	cm := NewCompression(DefaultCompressionConfig())
	r := newRouter(cm)

	tests := []struct {
		name           string
		path           string
		acceptGzip     bool
		expectedStatus int
		expectGzip     bool
	}{
		{name: "large JSON is compressed", path: "/large", acceptGzip: true, expectedStatus: http.StatusOK, expectGzip: true},
		{name: "client without gzip", path: "/large", acceptGzip: false, expectedStatus: http.StatusOK},
		{name: "small response keeps status", path: "/small", acceptGzip: true, expectedStatus: http.StatusCreated},
		{name: "binary content type", path: "/binary", acceptGzip: true, expectedStatus: http.StatusOK},
		{name: "no body", path: "/empty", acceptGzip: true, expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptGzip {
				req.Header.Set("Accept-Encoding", "gzip")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			zr, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			body, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Contains(t, string(body), "abcdefabcdef")
		})
	}

	stats := cm.Stats()
	assert.EqualValues(t, 1, stats["compressed_responses"])
}

func TestCompressionLeavesErrorsToOuterHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cm := NewCompression(DefaultCompressionConfig())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			c.JSON(http.StatusBadRequest, gin.H{"error": c.Errors.Last().Error()})
		}
	})
	r.Use(cm.Handler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Abort()
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), assert.AnError.Error())
}
