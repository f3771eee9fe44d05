package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var loginTime = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newService(admins *mocks.AdminRepository, audit *mocks.AuditRepository) *AuthService {
	return NewAuthService(admins, audit, "test-secret", time.Hour, WithClock(func() time.Time { return loginTime }))
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	admins := &mocks.AdminRepository{}
	audit := &mocks.AuditRepository{}
	service := newService(admins, audit)

	admin := &domain.Admin{ID: "a-1", Email: "ops@example.com", Role: domain.RoleAdmin, Active: true, PasswordHash: hashed(t, "correct horse")}
	admins.On("GetByEmail", ctx, "ops@example.com").Return(admin, nil).Once()
	admins.On("TouchLogin", ctx, "a-1", loginTime).Return(nil).Once()
	audit.On("Record", ctx, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == "LOGIN" && e.AdminID == "a-1" && e.IPAddress == "10.0.0.1"
	})).Return(nil).Once()

	result, err := service.Login(ctx, LoginInput{Email: " OPS@example.com ", Password: "correct horse", IPAddress: "10.0.0.1"})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, loginTime.Add(time.Hour), result.ExpiresAt)
	require.NotNil(t, result.Admin.LastLoginAt)

	principal, err := service.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "a-1", principal.AdminID)
	assert.Equal(t, domain.RoleAdmin, principal.Role)

	admins.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAuthService_Login_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		service := newService(&mocks.AdminRepository{}, &mocks.AuditRepository{})
		_, err := service.Login(ctx, LoginInput{Email: "ops@example.com"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		admins := &mocks.AdminRepository{}
		admins.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.NotFoundError{Resource: "admin"}).Once()
		service := newService(admins, &mocks.AuditRepository{})

		_, err := service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever1"})
		assert.True(t, domain.IsUnauthorized(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		admins := &mocks.AdminRepository{}
		admin := &domain.Admin{ID: "a-1", Active: true, PasswordHash: hashed(t, "correct horse")}
		admins.On("GetByEmail", ctx, "ops@example.com").Return(admin, nil).Once()
		service := newService(admins, &mocks.AuditRepository{})

		_, err := service.Login(ctx, LoginInput{Email: "ops@example.com", Password: "battery staple"})
		assert.True(t, domain.IsUnauthorized(err))
		admins.AssertNotCalled(t, "TouchLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deactivated", func(t *testing.T) {
		admins := &mocks.AdminRepository{}
		admin := &domain.Admin{ID: "a-1", Active: false, PasswordHash: hashed(t, "correct horse")}
		admins.On("GetByEmail", ctx, "ops@example.com").Return(admin, nil).Once()
		service := newService(admins, &mocks.AuditRepository{})

		_, err := service.Login(ctx, LoginInput{Email: "ops@example.com", Password: "correct horse"})
		assert.True(t, domain.IsForbidden(err))
	})
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	service := newService(&mocks.AdminRepository{}, nil)
	admin := &domain.Admin{ID: "a-1", Role: domain.RoleAdmin}

	expired, err := service.sign(admin, loginTime.Add(-2*time.Hour), loginTime.Add(-time.Hour))
	require.NoError(t, err)
	_, err = service.ParseToken(expired)
	assert.EqualError(t, err, "token expired")

	other := NewAuthService(nil, nil, "other-secret", time.Hour, WithClock(func() time.Time { return loginTime }))
	forged, err := other.sign(admin, loginTime, loginTime.Add(time.Hour))
	require.NoError(t, err)
	_, err = service.ParseToken(forged)
	assert.EqualError(t, err, "invalid token")

	_, err = service.ParseToken("not-a-jwt")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestAuthService_CreateAdmin(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{AdminID: "root", IPAddress: "10.0.0.2"})
	admins := &mocks.AdminRepository{}
	audit := &mocks.AuditRepository{}
	service := newService(admins, audit)

	admins.On("Create", ctx, mock.MatchedBy(func(a *domain.Admin) bool {
		return a.Email == "new@example.com" && a.Role == domain.RoleAdmin && a.Active &&
			bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("long enough")) == nil
	})).Return(nil).Once()
	audit.On("Record", ctx, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == "CREATE_ADMIN" && e.AdminID == "root"
	})).Return(nil).Once()

	admin, err := service.CreateAdmin(ctx, CreateAdminInput{Email: "New@Example.com", Name: "New", Password: "long enough"})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", admin.Email)
	admins.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAuthService_CreateAdmin_Validation(t *testing.T) {
	service := newService(&mocks.AdminRepository{}, &mocks.AuditRepository{})

	testCases := []struct {
		name  string
		input CreateAdminInput
		field string
	}{
		{name: "bad email", input: CreateAdminInput{Email: "nope", Name: "X", Password: "long enough"}, field: "email"},
		{name: "no name", input: CreateAdminInput{Email: "a@b.c", Password: "long enough"}, field: "name"},
		{name: "short password", input: CreateAdminInput{Email: "a@b.c", Name: "X", Password: "short"}, field: "password"},
		{name: "unknown role", input: CreateAdminInput{Email: "a@b.c", Name: "X", Password: "long enough", Role: "root"}, field: "role"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateAdmin(context.Background(), tc.input)
			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestAuthService_CreateAdmin_Duplicate(t *testing.T) {
	ctx := context.Background()
	admins := &mocks.AdminRepository{}
	service := newService(admins, &mocks.AuditRepository{})

	admins.On("Create", ctx, mock.Anything).Return(domain.ConflictError{Resource: "admin", Msg: "email is already registered"}).Once()

	_, err := service.CreateAdmin(ctx, CreateAdminInput{Email: "dup@example.com", Name: "Dup", Password: "long enough"})
	assert.True(t, domain.IsConflict(err))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{AdminID: "a-1"})
	p, ok := PrincipalFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a-1", p.AdminID)
}
