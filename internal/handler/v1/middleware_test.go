package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthgrid/hospital-api/internal/config"
	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/pkg/auth"
)

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-at-least-32-bytes-long!!",
		Issuer:          "hospital-api-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func protectedRouter(jwtManager *auth.JWTManager, roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("", Authenticate(jwtManager))
	if len(roles) > 0 {
		grp.Use(RequireRoles(roles...))
	}
	grp.GET("/protected", func(c *gin.Context) {
		claims := claimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwtManager := newTestJWTManager()
	r := protectedRouter(jwtManager)

	pair, err := jwtManager.GenerateTokenPair(&domain.Claims{
		UserID: uuid.New(),
		Role:   domain.RolePatient,
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "Bearer "+pair.AccessToken).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, pair.AccessToken).Code, "scheme prefix is required")
	// A refresh token must not open authenticated routes.
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+pair.RefreshToken).Code)
}

func TestRequireRoles(t *testing.T) {
	jwtManager := newTestJWTManager()
	r := protectedRouter(jwtManager, domain.RoleAdmin, domain.RoleDoctor)

	token := func(role domain.Role) string {
		pair, err := jwtManager.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: role})
		if err != nil {
			t.Fatal(err)
		}
		return "Bearer " + pair.AccessToken
	}

	assert.Equal(t, http.StatusOK, doGet(r, token(domain.RoleAdmin)).Code)
	assert.Equal(t, http.StatusOK, doGet(r, token(domain.RoleDoctor)).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, token(domain.RolePatient)).Code)
}
