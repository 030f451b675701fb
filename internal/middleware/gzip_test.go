package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGzipMiddleware(t *testing.T) {
	tests := []struct {
		name             string
		acceptEncoding   string
		status           int
		body             string
		checkCompression bool
	}{
		{
			name:             "Compress response when client supports gzip",
			acceptEncoding:   "gzip, deflate",
			status:           http.StatusFound,
			body:             `<a href="https://example.com/">https://example.com/</a>`,
			checkCompression: true,
		},
		{
			name:             "Do not compress when client does not support gzip",
			acceptEncoding:   "",
			status:           http.StatusBadRequest,
			body:             "Missing dest parameter",
			checkCompression: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(http.MethodGet, "/?dest=example.com", nil)
			req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			w := httptest.NewRecorder()

			GzipMiddleware(zap.NewNop())(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "Accept-Encoding", w.Header().Get("Vary"))

			if !tt.checkCompression {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.body, w.Body.String())
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			gz, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			defer gz.Close()

			body, err := io.ReadAll(gz)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}
