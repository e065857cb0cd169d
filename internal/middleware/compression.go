package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// CompressionConfig controls which responses are gzipped.
type CompressionConfig struct {
	MinSize          int      // responses smaller than this are sent as is
	CompressionLevel int      // gzip level, 1 (fastest) to 9 (smallest)
	ContentTypes     []string // compressible content type prefixes
}

func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"application/javascript",
		},
	}
}

// Compression gzips large responses for clients that accept it. Writes are
// buffered until MinSize is reached so small bodies skip the encoder.
type Compression struct {
	config CompressionConfig
	pool   sync.Pool
	stats  CompressionStats
}

func NewCompression(config CompressionConfig) *Compression {
	cm := &Compression{config: config}
	cm.pool.New = func() any {
		gz, err := gzip.NewWriterLevel(nil, config.CompressionLevel)
		if err != nil {
			gz = gzip.NewWriter(nil)
		}
		return gz
	}
	return cm
}

// Handler returns the gin middleware.
func (cm *Compression) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		original := c.Writer
		w := &gzipResponseWriter{ResponseWriter: original, cm: cm}
		c.Writer = w
		c.Header("Vary", "Accept-Encoding")

		defer func() {
			w.finish()
			c.Writer = original
		}()
		c.Next()
	}
}

func (cm *Compression) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.HasPrefix(contentType, ct) {
			return true
		}
	}
	return false
}

func (cm *Compression) Stats() map[string]any {
	return cm.stats.snapshot()
}

// gzipResponseWriter holds the status and the first MinSize bytes, then
// commits to either gzip or passthrough.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm        *Compression
	status    int
	buf       bytes.Buffer
	gz        *gzip.Writer
	raw       int64
	committed bool // headers have reached the client
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	if w.committed {
		return
	}
	w.status = code
}

func (w *gzipResponseWriter) WriteHeaderNow() {
	if !w.committed {
		_ = w.commit(false)
	}
}

func (w *gzipResponseWriter) Status() int {
	if !w.committed && w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *gzipResponseWriter) Written() bool {
	return w.committed || w.status != 0 || w.buf.Len() > 0
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	w.raw += int64(len(data))
	if w.committed {
		if w.gz != nil {
			return w.gz.Write(data)
		}
		return w.ResponseWriter.Write(data)
	}

	w.buf.Write(data)
	if w.buf.Len() >= w.cm.config.MinSize {
		if err := w.commit(w.cm.shouldCompress(w.Header().Get("Content-Type"))); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	if !w.committed {
		_ = w.commit(w.buf.Len() >= w.cm.config.MinSize && w.cm.shouldCompress(w.Header().Get("Content-Type")))
	}
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}

// commit sends the headers and whatever is buffered.
func (w *gzipResponseWriter) commit(compress bool) error {
	w.committed = true
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}

	if compress {
		h := w.Header()
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		w.gz = w.cm.pool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
	}
	if w.buf.Len() == 0 {
		w.ResponseWriter.WriteHeaderNow()
		return nil
	}

	var err error
	if w.gz != nil {
		_, err = w.gz.Write(w.buf.Bytes())
	} else {
		_, err = w.ResponseWriter.Write(w.buf.Bytes())
	}
	w.buf.Reset()
	return err
}

// finish flushes a response that never reached MinSize and closes the
// encoder. Nothing is written when the handler produced no output.
func (w *gzipResponseWriter) finish() {
	if !w.committed {
		if w.status == 0 && w.buf.Len() == 0 {
			return
		}
		_ = w.commit(false)
	}
	if w.gz == nil {
		w.cm.stats.record(w.raw, false)
		return
	}
	_ = w.gz.Close()
	w.gz.Reset(nil)
	w.cm.pool.Put(w.gz)
	w.gz = nil
	w.cm.stats.record(w.raw, true)
}

// CompressionStats counts responses seen by the middleware.
type CompressionStats struct {
	total      int64
	compressed int64
	rawBytes   int64
	compressedRaw  int64
}

func (cs *CompressionStats) record(rawSize int64, compressed bool) {
	atomic.AddInt64(&cs.total, 1)
	atomic.AddInt64(&cs.rawBytes, rawSize)
	if compressed {
		atomic.AddInt64(&cs.compressed, 1)
		atomic.AddInt64(&cs.compressedRaw, rawSize)
	}
}

func (cs *CompressionStats) snapshot() map[string]any {
	return map[string]any{
		"total_responses":      atomic.LoadInt64(&cs.total),
		"compressed_responses": atomic.LoadInt64(&cs.compressed),
		"total_bytes":          atomic.LoadInt64(&cs.rawBytes),
		"compressed_raw_bytes": atomic.LoadInt64(&cs.compressedRaw),
	}
}
