package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/Domenick1991/railbooking/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthUseCase interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	ParseToken(token string) (*Principal, error)
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.Admin, error)
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     domain.Admin
}

type CreateAdminInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	admins   repository.AdminRepository
	audit    repository.AuditRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type AuthServiceOption func(*AuthService)

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewAuthService(admins repository.AdminRepository, audit repository.AuditRepository, secret string, tokenTTL time.Duration, opts ...AuthServiceOption) *AuthService {
	service := &AuthService{
		admins:   admins,
		audit:    audit,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

var errInvalidCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ValidationError{Msg: "email and password are required"}
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !admin.Active {
		return nil, domain.ForbiddenError{Msg: "account is deactivated"}
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	token, err := s.sign(admin, now, expiresAt)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to issue token", Err: err}
	}

	if err := s.admins.TouchLogin(ctx, admin.ID, now); err != nil {
		logging.LogError(s.logger, "failed to update last login", err, slog.String("admin_id", admin.ID))
	} else {
		admin.LastLoginAt = &now
	}
	s.record(ctx, Principal{AdminID: admin.ID, IPAddress: input.IPAddress}, "LOGIN", "Admin logged in successfully")

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Admin: *admin}, nil
}

func (s *AuthService) sign(admin *domain.Admin, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		Email: admin.Email,
		Role:  admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) ParseToken(token string) (*Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.UnauthorizedError{Msg: "token expired"}
		}
		return nil, domain.UnauthorizedError{Msg: "invalid token"}
	}
	if claims.Subject == "" {
		return nil, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return &Principal{AdminID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*domain.Admin, error) {
	email := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	role := strings.TrimSpace(input.Role)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	case name == "":
		return nil, domain.ValidationError{Field: "name", Msg: "is required"}
	case len(input.Password) < minPasswordLength:
		return nil, domain.ValidationError{Field: "password", Msg: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if role == "" {
		role = domain.RoleAdmin
	}
	if role != domain.RoleAdmin && role != domain.RoleSuperAdmin {
		return nil, domain.ValidationError{Field: "role", Msg: "must be admin or superadmin"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	admin := &domain.Admin{Email: email, Name: name, Role: role, PasswordHash: string(hash), Active: true}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	actor, _ := PrincipalFrom(ctx)
	s.record(ctx, actor, "CREATE_ADMIN", fmt.Sprintf("Created admin: %s (%s)", admin.Email, admin.ID))
	return admin, nil
}

func (s *AuthService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

func (s *AuthService) record(ctx context.Context, actor Principal, action, details string) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{AdminID: actor.AdminID, Action: action, Details: details, IPAddress: actor.IPAddress}
	if err := s.audit.Record(ctx, entry); err != nil {
		logging.LogError(s.logger, "failed to write audit log", err, slog.String("action", action))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ AuthUseCase = (*AuthService)(nil)
