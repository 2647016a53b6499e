package authentication

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(requiredRole models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", AuthMiddleware(), RequireRole(requiredRole), func(c *gin.Context) {
		id, role := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r := testRouter(models.RoleDonor)
	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is missing")
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	r := testRouter(models.RoleDonor)
	w := doRequest(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	claims := &models.AuthClaims{
		UserID: 9,
		Role:   models.RoleDonor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey())
	require.NoError(t, err)

	r := testRouter(models.RoleDonor)
	w := doRequest(r, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")
}

func TestAuthMiddlewarePassesIdentity(t *testing.T) {
	signed, err := GenerateToken(9, models.RoleDonor)
	require.NoError(t, err)

	r := testRouter(models.RoleDonor)
	w := doRequest(r, "Bearer "+signed)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":9`)
	assert.Contains(t, w.Body.String(), `"role":"donor"`)
}

func TestAuthMiddlewareBareToken(t *testing.T) {
	// tokens are accepted with or without the Bearer prefix
	signed, err := GenerateToken(9, models.RoleDonor)
	require.NoError(t, err)

	r := testRouter(models.RoleDonor)
	w := doRequest(r, signed)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	signed, err := GenerateToken(3, models.RoleDonor)
	require.NoError(t, err)

	r := testRouter(models.RoleAdmin)
	w := doRequest(r, "Bearer "+signed)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "requires admin privileges")
}
