package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	var seenUser *models.User
	handler := middleware.Auth(tc.Auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = middleware.GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, "not.a.jwt")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token yields fresh user", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seenUser)
		assert.Equal(t, tc.Admin.ID, seenUser.ID)
	})

	t.Run("token from cookie", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: tc.AdminToken})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("company reassignment is visible on the next request", func(t *testing.T) {
		moved := "freshly-assigned-company"
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("id = ?", tc.Admin.ID).
			Update("company_id", moved).Error)

		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seenUser)
		require.NotNil(t, seenUser.CompanyID)
		assert.Equal(t, moved, *seenUser.CompanyID)
	})

	t.Run("deactivation invalidates an already-issued token", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("id = ?", tc.Admin.ID).
			Update("is_active", false).Error)

		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()

	employee := testutil.CreateTestEmployee(t, tc.DB, tc.Admin)
	employeeToken := testutil.GenerateTestToken(t, tc.JWTService, employee)

	handler := middleware.Auth(tc.Auth)(
		middleware.RequireRole(models.RoleAdmin)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	t.Run("admin passes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("employee forbidden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/", nil, employeeToken)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
