package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgoc-itb/lms-service/internal/auth"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/services"
)

func newGateRouter(authService services.AuthService) *gin.Engine {
	gate := NewAccessGate(authService, testLogger())
	router := gin.New()

	router.GET("/me", gate.Authenticate(), func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, user.Summary())
	})
	router.GET("/dashboard", gate.Authenticate(), gate.RequirePermission(auth.OpViewDashboard), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/public", gate.OptionalAuthenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"anonymous": optionalUser(c) == nil})
	})
	return router
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAccessGate_NoToken(t *testing.T) {
	router := newGateRouter(newStubAuthService())

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, services.ErrNoToken.Message, decodeError(t, rec).Message)
}

func TestAccessGate_InvalidToken(t *testing.T) {
	router := newGateRouter(newStubAuthService())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := serve(router, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, services.ErrTokenFailed.Message, decodeError(t, rec).Message)
}

func TestAccessGate_TokenSources(t *testing.T) {
	stub := newStubAuthService()
	stub.users["cookie-token"] = &models.User{ID: "from-cookie", Access: models.AccessMember}
	stub.users["header-token"] = &models.User{ID: "from-header", Access: models.AccessMember}
	router := newGateRouter(stub)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		rec := serve(router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "from-header")
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "cookie-token"})
		req.Header.Set("Authorization", "Bearer header-token")
		rec := serve(router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "from-cookie")
	})

	t.Run("non bearer scheme is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic header-token")
		rec := serve(router, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	seen := stub.seenTokens()
	assert.Equal(t, []string{"header-token", "cookie-token", ""}, seen)
}

func TestAccessGate_RoleChangeAppliesToLiveToken(t *testing.T) {
	stub := newStubAuthService()
	stored := &models.User{ID: "ops", Access: models.AccessTechnicalAdmin}
	stub.users["ops-token"] = stored
	router := newGateRouter(stub)

	request := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer ops-token")
		return serve(router, req)
	}

	assert.Equal(t, http.StatusOK, request().Code)

	stored.Access = models.AccessBuddy
	rec := request()
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "Buddy")

	delete(stub.users, "ops-token")
	assert.Equal(t, http.StatusUnauthorized, request().Code)
}

func TestAccessGate_OptionalAuthenticate(t *testing.T) {
	stub := newStubAuthService()
	stub.users["member-token"] = &models.User{ID: "m", Access: models.AccessMember}
	router := newGateRouter(stub)

	tests := []struct {
		name          string
		header        string
		wantAnonymous bool
	}{
		{name: "no token", wantAnonymous: true},
		{name: "invalid token", header: "Bearer nope", wantAnonymous: true},
		{name: "valid token", header: "Bearer member-token", wantAnonymous: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/public", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(router, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var body map[string]bool
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantAnonymous, body["anonymous"])
		})
	}
}

func TestRequireAccess_WithoutAuthenticate(t *testing.T) {
	gate := NewAccessGate(newStubAuthService(), testLogger())
	router := gin.New()
	router.GET("/admins", gate.RequireAccess(models.AdminAccessLevels...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/admins", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
