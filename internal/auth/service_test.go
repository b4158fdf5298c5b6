package auth_test

import (
	"context"
	"testing"

	"github.com/propdesk/propdesk/internal/auth"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*auth.Service, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	return tc.Auth, tc
}

func TestService_Register_RoleInference(t *testing.T) {
	svc, tc := newService(t)
	defer tc.Cleanup()
	ctx := context.Background()

	t.Run("admin local part mints a company", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "admin@foo.com",
			Password: "securepassword123",
			Name:     "Foo Admin",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, resp.User.Role)
		require.NotNil(t, resp.User.CompanyID)
		assert.NotEmpty(t, *resp.User.CompanyID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("two admins get distinct companies", func(t *testing.T) {
		a, err := svc.Register(ctx, auth.RegisterInput{
			Email: "admin@one.com", Password: "securepassword123", Name: "One",
		})
		require.NoError(t, err)
		b, err := svc.Register(ctx, auth.RegisterInput{
			Email: "admin@two.com", Password: "securepassword123", Name: "Two",
		})
		require.NoError(t, err)
		assert.NotEqual(t, *a.User.CompanyID, *b.User.CompanyID)
	})

	t.Run("employee inherits the domain admin's company", func(t *testing.T) {
		admin, err := svc.Register(ctx, auth.RegisterInput{
			Email: "admin@bar.com", Password: "securepassword123", Name: "Bar Admin",
		})
		require.NoError(t, err)

		emp, err := svc.Register(ctx, auth.RegisterInput{
			Email: "employee@bar.com", Password: "securepassword123", Name: "Bar Employee",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleEmployee, emp.User.Role)
		require.NotNil(t, emp.User.CompanyID)
		assert.Equal(t, *admin.User.CompanyID, *emp.User.CompanyID)
	})

	t.Run("employee before admin fails", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email: "employee@lonely.com", Password: "securepassword123", Name: "Early Bird",
		})
		assert.ErrorIs(t, err, auth.ErrNoAdminForDomain)
	})

	t.Run("anything else is a member without a company", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email: "alice@baz.com", Password: "securepassword123", Name: "Alice",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, resp.User.Role)
		assert.Nil(t, resp.User.CompanyID)
	})
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, tc := newService(t)
	defer tc.Cleanup()
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email: "dup@example.com", Password: "securepassword123", Name: "First",
	})
	require.NoError(t, err)

	t.Run("exact duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email: "dup@example.com", Password: "securepassword123", Name: "Second",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})

	t.Run("case-insensitive duplicate", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email: "DUP@Example.COM", Password: "securepassword123", Name: "Third",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	svc, tc := newService(t)
	defer tc.Cleanup()
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email: "login@example.com", Password: "securepassword123", Name: "Login User",
	})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{
			Email: "login@example.com", Password: "securepassword123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email: "LOGIN@example.com", Password: "securepassword123",
		})
		assert.NoError(t, err)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, errWrongPw := svc.Login(ctx, auth.LoginInput{
			Email: "login@example.com", Password: "not-the-password",
		})
		_, errUnknown := svc.Login(ctx, auth.LoginInput{
			Email: "ghost@example.com", Password: "securepassword123",
		})
		assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.Equal(t, errWrongPw, errUnknown)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("email = ?", "login@example.com").
			Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email: "login@example.com", Password: "securepassword123",
		})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)

		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("email = ?", "login@example.com").
			Update("is_active", true).Error)
	})

	t.Run("employee without a company cannot log in", func(t *testing.T) {
		emp := testutil.CreateTestEmployee(t, tc.DB, tc.Admin)
		require.NoError(t, tc.DB.Model(emp).Update("company_id", nil).Error)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email: emp.Email, Password: "testpassword123",
		})
		assert.ErrorIs(t, err, auth.ErrCompanyNotAssigned)
	})
}

func TestService_VerifyToken(t *testing.T) {
	svc, tc := newService(t)
	defer tc.Cleanup()
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email: "admin@verify.com", Password: "securepassword123", Name: "Verify Admin",
	})
	require.NoError(t, err)

	t.Run("valid token resolves to current user", func(t *testing.T) {
		user, err := svc.VerifyToken(ctx, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, user.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.VerifyToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("reassignment is visible despite stale claims", func(t *testing.T) {
		newCompany := "moved-company-id"
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("id = ?", resp.User.ID).
			Update("company_id", newCompany).Error)

		user, err := svc.VerifyToken(ctx, resp.Token)
		require.NoError(t, err)
		require.NotNil(t, user.CompanyID)
		assert.Equal(t, newCompany, *user.CompanyID)
	})

	t.Run("deactivation kills existing sessions", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(&models.User{}).
			Where("id = ?", resp.User.ID).
			Update("is_active", false).Error)

		_, err := svc.VerifyToken(ctx, resp.Token)
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, tc.DB.Unscoped().
			Where("id = ?", resp.User.ID).
			Delete(&models.User{}).Error)

		_, err := svc.VerifyToken(ctx, resp.Token)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}

func TestService_ForgotPassword(t *testing.T) {
	svc, tc := newService(t)
	defer tc.Cleanup()
	ctx := context.Background()

	// No queue configured in tests; both paths must still succeed silently.
	t.Run("existing account", func(t *testing.T) {
		assert.NoError(t, svc.ForgotPassword(ctx, tc.Admin.Email))
	})

	t.Run("unknown account looks identical", func(t *testing.T) {
		assert.NoError(t, svc.ForgotPassword(ctx, "nobody@nowhere.com"))
	})
}

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	hash, err := auth.HashPassword("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)
	assert.True(t, auth.CheckPassword("supersecret", hash))
	assert.False(t, auth.CheckPassword("wrong", hash))
}
