package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/testutil"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
	"github.com/Skotchmaster/shop_backend/internal/validation"
)

func newTestAccounts(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()

	gdb := testutil.InitTestDB(t)
	return &AccountService{
		Repo: &repo.GormRepo{DB: gdb},
		Tokens: &tokens.Issuer{
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     10 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		},
	}, gdb
}

func countUsers(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestRoleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want models.Role
	}{
		{name: "admin", want: models.RoleAdmin},
		{name: "  Admin ", want: models.RoleAdmin},
		{name: "ADMIN", want: models.RoleAdmin},
		{name: "administrator", want: models.RoleUser},
		{name: "alice", want: models.RoleUser},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoleFor(tt.name), tt.name)
	}
}

func TestSignup_CreatesUserWithHashedPassword(t *testing.T) {
	svc, gdb := newTestAccounts(t)

	user, err := svc.Signup(context.Background(), transport.SignupRequest{Name: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.Password)
	assert.EqualValues(t, 1, countUsers(t, gdb))
}

func TestSignup_AdminNameGetsAdminRole(t *testing.T) {
	svc, _ := newTestAccounts(t)

	user, err := svc.Signup(context.Background(), transport.SignupRequest{Name: "Admin", Email: "root@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, gdb := newTestAccounts(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, transport.SignupRequest{Name: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	// the duplicate check runs before shape validation
	_, err = svc.Signup(ctx, transport.SignupRequest{Name: "al", Email: "alice@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.EqualValues(t, 1, countUsers(t, gdb))
}

func TestSignup_MissingAndInvalidFields(t *testing.T) {
	svc, gdb := newTestAccounts(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, transport.SignupRequest{Name: "alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Signup(ctx, transport.SignupRequest{Name: "al", Email: "not-an-email", Password: "short"})
	var verr *validation.Errors
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Messages, 3)
	assert.Zero(t, countUsers(t, gdb))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAccounts(t)
	pub := &recordingPublisher{}
	svc.Events = pub
	ctx := context.Background()

	created, err := svc.Signup(ctx, transport.SignupRequest{Name: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, res.User.ID)
		require.NotNil(t, res.Tokens)

		claims, err := svc.Tokens.ParseAccess(res.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tokens.Identity{Name: "alice", ID: created.ID, Role: models.RoleUser}, claims.Identity())

		_, err = svc.Tokens.ParseRefresh(res.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), res.Tokens.AccessExp, 5*time.Second)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.Tokens.RefreshExp, 5*time.Second)
	})

	t.Run("wrong password", func(t *testing.T) {
		res, err := svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com", Password: "password999"})
		assert.ErrorIs(t, err, ErrInvalidPassword)
		assert.Nil(t, res)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, transport.LoginRequest{Email: "bob@example.com", Password: "password123"})
		assert.ErrorIs(t, err, ErrEmailNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, transport.LoginRequest{Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("invalid shape", func(t *testing.T) {
		_, err := svc.Login(ctx, transport.LoginRequest{Email: "alice", Password: "short"})
		var verr *validation.Errors
		assert.True(t, errors.As(err, &verr))
	})

	assert.Equal(t, []string{events.UserRegistered, events.UserLoggedIn}, pub.types())
}
