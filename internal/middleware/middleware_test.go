package middleware

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticTokens map[string]string

func (s staticTokens) ValidateToken(token string) (string, error) {
	if email, ok := s[token]; ok {
		return email, nil
	}
	return "", stderrors.New("bad token")
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := gin.New()
	r.Use(NewAuthMiddleware(staticTokens{"good": "doc@umn.edu"}).Authenticate())
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, UserEmail(c)) })

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			w := perform(r, http.MethodGet, "/me", h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "doc@umn.edu", w.Body.String())
			}
		})
	}
}

func TestRateLimitPerCaller(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(RateLimiterConfig{Rate: 0.0001, Burst: 2}).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	a := http.Header{"X-Forwarded-For": []string{"10.0.0.1"}}
	b := http.Header{"X-Forwarded-For": []string{"10.0.0.2"}}

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", a).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", a).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", a).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", b).Code)
}

func TestErrorHandlerDoesNotOverwrite(t *testing.T) {
	nop := zerolog.Nop()
	r := gin.New()
	r.Use(ErrorHandler(&nop))
	r.GET("/written", func(c *gin.Context) {
		httputil.RespondWithError(c, stderrors.New("db down"))
	})
	r.GET("/unwritten", func(c *gin.Context) {
		_ = c.Error(errors.NotFound("Patient", nil))
	})

	w := perform(r, http.MethodGet, "/written", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `"status"`))

	w = perform(r, http.MethodGet, "/unwritten", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Patient not found", resp.Message)
}

func TestRecovery(t *testing.T) {
	nop := zerolog.Nop()
	r := gin.New()
	r.Use(RequestID(), Recovery(&nop))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

func ridHeader(v string) http.Header {
	h := http.Header{}
	h.Set(HeaderXRequestID, v)
	return h
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := perform(r, http.MethodGet, "/", ridHeader("req-42.a:b"))
	assert.Equal(t, "req-42.a:b", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "req-42.a:b", w.Body.String())

	for _, bad := range []string{"two words", "line\nbreak", strings.Repeat("x", maxRequestIDLen+1)} {
		w = perform(r, http.MethodGet, "/", ridHeader(bad))
		got := w.Header().Get(HeaderXRequestID)
		assert.NotEqual(t, bad, got)
		assert.Len(t, got, 36, bad)
	}

	w = perform(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 4, MaxHeaderSize: 1 << 10}))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too large"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/", http.Header{"Origin": []string{"https://or.umn.edu"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://or.umn.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}
