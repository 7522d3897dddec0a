package authorization

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleIncharge.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.Equal(t, RoleUser, ParseUserRole("superuser"))
	assert.Equal(t, RoleIncharge, ParseUserRole("incharge"))
	assert.Equal(t, "Incharge", RoleIncharge.DisplayName())
	assert.Equal(t, "Admin", RoleAdmin.DisplayName())
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name    string
		p       Principal
		roles   []UserRole
		allowed bool
	}{
		{"anonymous denied", Principal{}, nil, false},
		{"any authenticated", Principal{ID: 1, Role: RoleUser}, nil, true},
		{"staff admitted", Principal{ID: 2, Role: RoleIncharge}, []UserRole{RoleAdmin, RoleIncharge}, true},
		{"user rejected from staff", Principal{ID: 3, Role: RoleUser}, []UserRole{RoleAdmin, RoleIncharge}, false},
		{"incharge rejected from admin", Principal{ID: 4, Role: RoleIncharge}, []UserRole{RoleAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Guard(tt.p, tt.roles...)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !d.Allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(p *Principal) int {
		w := httptest.NewRecorder()
		_, engine := gin.CreateTestContext(w)
		engine.GET("/", func(c *gin.Context) {
			if p != nil {
				SetPrincipal(c, *p)
			}
			c.Next()
		}, RequireRoles(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, run(&Principal{ID: 1, Role: RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, run(&Principal{ID: 1, Role: RoleUser}))
	assert.Equal(t, http.StatusForbidden, run(nil))
}
