package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRentRecord(t *testing.T, router http.Handler, token string) string {
	t.Helper()

	body := map[string]interface{}{
		"tenant_name":  "Jane Renter",
		"amount_cents": 95000,
		"period_month": "2026-08",
	}
	req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents", body, token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		ID string `json:"id"`
	}
	testutil.ParseJSONResponse(t, rr, &resp)
	return resp.ID
}

func TestRentHandler_CompanyScoping(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	recordID := createRentRecord(t, router, tc.AdminToken)

	rival := testutil.CreateTestAdmin(t, tc.DB, "rival.com")
	rivalToken := testutil.GenerateTestToken(t, tc.JWTService, rival)

	t.Run("row is stamped with the caller's company", func(t *testing.T) {
		var record models.RentRecord
		require.NoError(t, tc.DB.First(&record, "id = ?", recordID).Error)
		assert.Equal(t, *tc.Admin.CompanyID, record.CompanyID)
	})

	t.Run("another company cannot see the record", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/rents/"+recordID, nil, rivalToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("another company cannot collect", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents/"+recordID+"/collect",
			map[string]string{"method": "transfer"}, rivalToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("caller without a company gets forbidden", func(t *testing.T) {
		member := testutil.CreateTestMember(t, tc.DB)
		memberToken := testutil.GenerateTestToken(t, tc.JWTService, member)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/rents", nil, memberToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("employee of the same company can see the record", func(t *testing.T) {
		employee := testutil.CreateTestEmployee(t, tc.DB, tc.Admin)
		employeeToken := testutil.GenerateTestToken(t, tc.JWTService, employee)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/rents/"+recordID, nil, employeeToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRentHandler_Collect(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	recordID := createRentRecord(t, router, tc.AdminToken)

	t.Run("first collection succeeds", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents/"+recordID+"/collect",
			map[string]string{"method": "transfer"}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var record models.RentRecord
		require.NoError(t, tc.DB.First(&record, "id = ?", recordID).Error)
		assert.True(t, record.Collected())
		assert.Equal(t, "transfer", record.Method)
	})

	t.Run("second collection is rejected", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents/"+recordID+"/collect",
			map[string]string{"method": "cash"}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var record models.RentRecord
		require.NoError(t, tc.DB.First(&record, "id = ?", recordID).Error)
		assert.Equal(t, "transfer", record.Method) // untouched
	})
}

func TestRentHandler_Validation(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing tenant", map[string]interface{}{"amount_cents": 1000, "period_month": "2026-08"}},
		{"zero amount", map[string]interface{}{"tenant_name": "X", "amount_cents": 0, "period_month": "2026-08"}},
		{"bad period", map[string]interface{}{"tenant_name": "X", "amount_cents": 1000, "period_month": "August 2026"}},
		{"month out of range", map[string]interface{}{"tenant_name": "X", "amount_cents": 1000, "period_month": "2026-13"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents", tt.body, tc.AdminToken)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestRentHandler_ListingLink(t *testing.T) {
	router, tc := setupTestRouter(t)
	defer tc.Cleanup()

	// A listing owned by the admin (a user of this company).
	listingID := createListing(t, router, tc.AdminToken, "Rented flat")

	t.Run("links a listing from the same company", func(t *testing.T) {
		body := map[string]interface{}{
			"tenant_name":  "Linked Tenant",
			"amount_cents": 80000,
			"period_month": "2026-09",
			"listing_id":   listingID,
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("rejects a listing from outside the company", func(t *testing.T) {
		rival := testutil.CreateTestAdmin(t, tc.DB, "rival.com")
		rivalToken := testutil.GenerateTestToken(t, tc.JWTService, rival)

		body := map[string]interface{}{
			"tenant_name":  "Poacher",
			"amount_cents": 80000,
			"period_month": "2026-09",
			"listing_id":   listingID,
		}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/rents", body, rivalToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
