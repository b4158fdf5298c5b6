package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/propdesk/propdesk/internal/database/models"
	"github.com/propdesk/propdesk/internal/tasks"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrCompanyNotAssigned = errors.New("no company assigned")
	ErrNoAdminForDomain   = errors.New("no admin registered for email domain")
)

// Enqueuer is the subset of asynq.Client the service needs. Nil is allowed;
// enqueue is then skipped.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	queue  Enqueuer
	logger *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, queue Enqueuer, logger *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, queue: queue, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account. The role and company are inferred from the
// email address: a local part of "admin" mints a fresh company, a local part
// of "employee" joins the company of the admin already registered on the same
// domain, anything else becomes an unaffiliated member.
//
// Anyone who can pick an email address can mint a tenant for its domain; this
// self-service behavior is intentional, there is no verification step.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         models.RoleMember,
		IsActive:     true,
	}

	local, domain, ok := splitEmail(email)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	switch local {
	case "admin":
		companyID := uuid.NewString()
		user.Role = models.RoleAdmin
		user.CompanyID = &companyID
	case "employee":
		var admin models.User
		err := s.db.WithContext(ctx).
			Where("role = ? AND email LIKE ? AND company_id IS NOT NULL", models.RoleAdmin, "%@"+domain).
			First(&admin).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoAdminForDomain
			}
			return nil, err
		}
		user.Role = models.RoleEmployee
		user.CompanyID = admin.CompanyID
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password produce the same error so callers cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if user.Role == models.RoleEmployee && user.CompanyID == nil {
		return nil, ErrCompanyNotAssigned
	}

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// VerifyToken resolves a bearer token to the current user row. Token claims
// are trusted for identity only; activity and company affiliation are read
// fresh so deactivation or reassignment takes effect on the next request.
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return user, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ForgotPassword enqueues a password-reset email for the account, if one
// exists. It reports nothing about account existence to the caller.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // same outward behavior as success
		}
		return err
	}

	if s.queue == nil {
		s.logger.Warn("queue not configured, skipping reset email", "user_id", user.ID)
		return nil
	}

	task, err := tasks.NewPasswordResetTask(tasks.PasswordResetPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		return err
	}

	if _, err := s.queue.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
		return err
	}

	s.logger.Info("password reset email enqueued", "user_id", user.ID)
	return nil
}

func splitEmail(email string) (local, domain string, ok bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", "", false
	}
	return email[:at], email[at+1:], true
}
