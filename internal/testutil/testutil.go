package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propdesk/propdesk/internal/auth"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/tenant"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Employee{},
		&models.Appointment{},
		&models.RentRecord{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewTestLogger returns a logger that discards output
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestJWTService creates a JWT service for testing
func NewTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// CreateTestAdmin creates an admin user with a freshly minted company for the
// given email domain.
func CreateTestAdmin(t *testing.T, db *gorm.DB, domain string) *models.User {
	t.Helper()

	companyID := uuid.NewString()
	return createUser(t, db, "admin@"+domain, models.RoleAdmin, &companyID)
}

// CreateTestEmployee creates an employee attached to the admin's company.
func CreateTestEmployee(t *testing.T, db *gorm.DB, admin *models.User) *models.User {
	t.Helper()

	email := "employee-" + uuid.NewString()[:8] + "@" + emailDomain(admin.Email)
	return createUser(t, db, email, models.RoleEmployee, admin.CompanyID)
}

// CreateTestMember creates an unaffiliated member account.
func CreateTestMember(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	email := "member-" + uuid.NewString()[:8] + "@example.com"
	return createUser(t, db, email, models.RoleMember, nil)
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.Role, companyID *string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
		CompanyID:    companyID,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return email
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Auth       *auth.Service
	Resolver   *tenant.Resolver
	Admin      *models.User
	AdminToken string
}

// NewTestContext creates a complete test setup with DB, services, and a
// seeded admin for acme.com.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := NewTestJWTService()
	authService := auth.NewService(db, jwtService, nil, NewTestLogger())
	resolver := tenant.NewResolver(db)
	admin := CreateTestAdmin(t, db, "acme.com")
	token := GenerateTestToken(t, jwtService, admin)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Auth:       authService,
		Resolver:   resolver,
		Admin:      admin,
		AdminToken: token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
