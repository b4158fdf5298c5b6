package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/propdesk/propdesk/internal/api"
	"github.com/propdesk/propdesk/internal/api/dto"
	"github.com/propdesk/propdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*api.Router, *testutil.TestSetup) {
	t.Helper()

	tc := testutil.NewTestContext(t)
	router := api.NewRouter(api.RouterConfig{
		DB:          tc.DB,
		Logger:      testutil.NewTestLogger(),
		AuthService: tc.Auth,
		Resolver:    tc.Resolver,
		Dev:         true,
	})

	return router, tc
}

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("admin registration mints a company", func(t *testing.T) {
		body := map[string]string{
			"email":    "admin@fresh.com",
			"password": "securepassword123",
			"name":     "Fresh Admin",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin", resp.User.Role)
		assert.NotEmpty(t, resp.User.CompanyID)
	})

	t.Run("employee registration joins the admin's company", func(t *testing.T) {
		body := map[string]string{
			"email":    "employee@fresh.com",
			"password": "securepassword123",
			"name":     "Fresh Employee",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "employee", resp.User.Role)
		assert.NotEmpty(t, resp.User.CompanyID)
	})

	t.Run("employee with no admin for the domain", func(t *testing.T) {
		body := map[string]string{
			"email":    "employee@orphan.com",
			"password": "securepassword123",
			"name":     "Orphan",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate email differing only in case", func(t *testing.T) {
		body := map[string]string{
			"email":    "Admin@Fresh.COM",
			"password": "securepassword123",
			"name":     "Copycat",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register",
			map[string]string{"email": "x@y.com"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	t.Run("success sets cookie", func(t *testing.T) {
		body := map[string]string{
			"email":    tc.Admin.Email,
			"password": "testpassword123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AuthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.NotEmpty(t, resp.Token)

		var tokenCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == "token" {
				tokenCookie = c
			}
		}
		require.NotNil(t, tokenCookie)
		assert.True(t, tokenCookie.HttpOnly)
	})

	t.Run("wrong password and unknown email share a response shape", func(t *testing.T) {
		reqWrong := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login",
			map[string]string{"email": tc.Admin.Email, "password": "wrong"})
		rrWrong := httptest.NewRecorder()
		router.ServeHTTP(rrWrong, reqWrong)

		reqGhost := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login",
			map[string]string{"email": "ghost@acme.com", "password": "testpassword123"})
		rrGhost := httptest.NewRecorder()
		router.ServeHTTP(rrGhost, reqGhost)

		assert.Equal(t, http.StatusUnauthorized, rrWrong.Code)
		assert.Equal(t, http.StatusUnauthorized, rrGhost.Code)
		assert.JSONEq(t, rrWrong.Body.String(), rrGhost.Body.String())
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	for _, email := range []string{tc.Admin.Email, "nobody@nowhere.com"} {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/forgot-password",
			map[string]string{"email": email})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "email %s", email)
	}
}

func TestAuthHandler_AssignCompany(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	member := testutil.CreateTestMember(t, tc.DB)

	t.Run("admin assigns a member into their company", func(t *testing.T) {
		body := map[string]string{
			"user_id":    member.ID.String(),
			"company_id": *tc.Admin.CompanyID,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/assign-company", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.UserDTO
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, *tc.Admin.CompanyID, resp.CompanyID)
	})

	t.Run("admin may not assign into a foreign company", func(t *testing.T) {
		rival := testutil.CreateTestAdmin(t, tc.DB, "rival.com")
		body := map[string]string{
			"user_id":    member.ID.String(),
			"company_id": *rival.CompanyID,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/assign-company", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("employee may not assign", func(t *testing.T) {
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Admin)
		employeeToken := testutil.GenerateTestToken(t, tc.JWTService, employee)
		body := map[string]string{
			"user_id":    member.ID.String(),
			"company_id": *tc.Admin.CompanyID,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/assign-company", body, employeeToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown target", func(t *testing.T) {
		body := map[string]string{
			"user_id":    "11111111-2222-3333-4444-555555555555",
			"company_id": *tc.Admin.CompanyID,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/assign-company", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAuthHandler_CompanyUsers(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	testutil.CreateTestEmployee(t, tc.DB, tc.Admin)

	t.Run("admin lists company users", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/company-users", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var users []dto.UserDTO
		testutil.ParseJSONResponse(t, rr, &users)
		assert.Len(t, users, 2)
	})

	t.Run("employee forbidden", func(t *testing.T) {
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Admin)
		employeeToken := testutil.GenerateTestToken(t, tc.JWTService, employee)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/auth/company-users", nil, employeeToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestMe_ReflectsFreshState(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/me", nil, tc.AdminToken)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var me dto.UserDTO
	testutil.ParseJSONResponse(t, rr, &me)
	assert.Equal(t, tc.Admin.ID.String(), me.ID)
	assert.Equal(t, *tc.Admin.CompanyID, me.CompanyID)
}
