package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldstock/pkg/models"
	"fieldstock/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{JWTMiddleware(testSecret)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		actor, _ := CurrentActor(c)
		c.JSON(http.StatusOK, actor)
	})
	r.GET("/technicians/:id/inventory", chain...)
	return r
}

func tokenFor(t *testing.T, actor models.Actor) string {
	token, err := GenerateJWT(testSecret, actor, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestJWTMiddleware(t *testing.T) {
	region := int64(3)
	valid := tokenFor(t, models.Actor{ID: 7, Role: roles.Technician, RegionID: &region})
	expired, err := GenerateJWT(testSecret, models.Actor{ID: 7, Role: roles.Technician}, -time.Hour)
	require.NoError(t, err)
	foreign, err := GenerateJWT([]byte("other"), models.Actor{ID: 7, Role: roles.Admin}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"valid token", valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/technicians/7/inventory", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newRouter().ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestAuthorizeOwnerOr(t *testing.T) {
	tests := []struct {
		name     string
		actor    models.Actor
		path     string
		expected int
	}{
		{"owner", models.Actor{ID: 7, Role: roles.Technician}, "/technicians/7/inventory", http.StatusOK},
		{"other technician", models.Actor{ID: 8, Role: roles.Technician}, "/technicians/7/inventory", http.StatusForbidden},
		{"supervisor", models.Actor{ID: 1, Role: roles.Supervisor}, "/technicians/7/inventory", http.StatusOK},
		{"bad id", models.Actor{ID: 7, Role: roles.Technician}, "/technicians/abc/inventory", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", tokenFor(t, tt.actor))
			newRouter(AuthorizeOwnerOr("id", roles.Supervisor)).ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestRequireApprover(t *testing.T) {
	tests := []struct {
		name     string
		role     roles.Role
		expected int
	}{
		{"technician", roles.Technician, http.StatusForbidden},
		{"supervisor", roles.Supervisor, http.StatusOK},
		{"admin", roles.Admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/technicians/1/inventory", nil)
			req.Header.Set("Authorization", tokenFor(t, models.Actor{ID: 1, Role: tt.role}))
			newRouter(RequireApprover()).ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
