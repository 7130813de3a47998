package auth

import (
	"context"
	"testing"
	"time"

	"github.com/danielortega/bloodbank-backend/internal/users"
	pkgauth "github.com/danielortega/bloodbank-backend/pkg/auth"
	"github.com/danielortega/bloodbank-backend/pkg/auth/session"
	"github.com/danielortega/bloodbank-backend/pkg/config"
	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users      map[uuid.UUID]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[uuid.UUID]*models.User),
		lastLogins: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) users.Repository { return f }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogins[id] = at
	return nil
}

type fakeSessions struct {
	tokens map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: make(map[string]string)}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newID := uuid.NewString()
	newToken := "refresh-" + newID
	f.tokens[newID] = newToken
	return newID, newToken, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(f.tokens, accessID)
	return nil
}

type fakeLimiter struct {
	counts map[string]int64
	limit  int64
}

func (f *fakeLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bloodbank-test",
		ExpirationMinutes: 15,
	}
}

type authFixture struct {
	svc      Service
	userRepo *fakeUserRepo
	sessions *fakeSessions
	user     *models.User
	password string
}

func newAuthFixture(t *testing.T, limiter RateLimiter) *authFixture {
	t.Helper()

	userRepo := newFakeUserRepo()
	sessions := newFakeSessions()

	password := "correct-horse-battery"
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Email:        "admin@bloodbank.test",
		PasswordHash: hash,
		Name:         "Admin",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	limitCfg := config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginEmailLimit: 3,
		LoginIPLimit:    10,
	}
	svc, err := NewService(userRepo, sessions, limiter, testJWTConfig(), limitCfg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &authFixture{svc: svc, userRepo: userRepo, sessions: sessions, user: user, password: password}
}

func TestLoginSuccess(t *testing.T) {
	fx := newAuthFixture(t, nil)

	result, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: fx.password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != fx.user.ID || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := fx.userRepo.lastLogins[fx.user.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newAuthFixture(t, nil)

	_, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: "wrong",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	fx := newAuthFixture(t, nil)

	_, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    "nobody@bloodbank.test",
		Password: "whatever",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	fx := newAuthFixture(t, nil)
	fx.userRepo.users[fx.user.ID].IsActive = false

	_, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: fx.password,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	fx := newAuthFixture(t, &fakeLimiter{})

	for i := 0; i < 3; i++ {
		if _, err := fx.svc.Login(context.Background(), LoginInput{
			Email:    fx.user.Email,
			Password: "wrong",
		}); err == nil {
			t.Fatal("expected failure")
		}
	}

	_, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: fx.password,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	fx := newAuthFixture(t, nil)

	login, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: fx.password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := fx.svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// The old pair is spent.
	_, err = fx.svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	fx := newAuthFixture(t, nil)

	login, err := fx.svc.Login(context.Background(), LoginInput{
		Email:    fx.user.Email,
		Password: fx.password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := fx.svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = fx.svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
