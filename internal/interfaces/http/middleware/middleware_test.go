package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/auth"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	allowed map[string]bool
	err     error
}

func (s *stubChecker) Enforce(role, resource, action string) (bool, error) {
	return s.allowed[role+":"+resource+":"+action], s.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", "helpdesk", 5)
	token, err := jwtService.Generate(10, "incharge")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtService, logger.NewNop()).RequireAuth(), func(c *gin.Context) {
		p, _ := authorization.GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"query token", "", "?token=" + token, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"id":10,"role":"incharge"}`, w.Body.String())
			}
		})
	}
}

func withPrincipal(p authorization.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization.SetPrincipal(c, p)
		c.Next()
	}
}

func TestRequirePermission(t *testing.T) {
	checker := &stubChecker{allowed: map[string]bool{"admin:ticket:delete": true}}
	pm := NewPermissionMiddleware(checker, logger.NewNop())
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.DELETE("/admin", withPrincipal(authorization.Principal{ID: 1, Role: authorization.RoleAdmin}), pm.RequirePermission("ticket", "delete"), ok)
	r.DELETE("/user", withPrincipal(authorization.Principal{ID: 2, Role: authorization.RoleUser}), pm.RequirePermission("ticket", "delete"), ok)
	r.DELETE("/anon", pm.RequirePermission("ticket", "delete"), ok)

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodDelete, "/admin", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest(http.MethodDelete, "/user", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodDelete, "/anon", nil)).Code)

	checker.err = assert.AnError
	assert.Equal(t, http.StatusInternalServerError, serve(r, httptest.NewRequest(http.MethodDelete, "/admin", nil)).Code)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRateLimiter(client, "messages", 2, time.Minute, logger.NewNop())
	limiter.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	r := gin.New()
	r.POST("/send", withPrincipal(authorization.Principal{ID: 10, Role: authorization.RoleUser}), limiter.Limit(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() int {
		return serve(r, httptest.NewRequest(http.MethodPost, "/send", nil)).Code
	}
	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	// Next window.
	limiter.now = func() time.Time { return time.Unix(1_700_000_060, 0) }
	assert.Equal(t, http.StatusCreated, send())

	// Redis outage lets requests through.
	mr.Close()
	assert.Equal(t, http.StatusCreated, send())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	assert.Equal(t, "req-1", serve(r, req).Header().Get("X-Request-ID"))

	assert.NotEmpty(t, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", serve(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}
