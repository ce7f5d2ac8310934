package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	mock_auth "github.com/RexzyOfficial/Kas-Pemuda/internal/auth/mocks"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

const testSecret = "test-signing-secret"

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(t *testing.T, users UserStore) *Service {
	t.Helper()
	logger := log.New(log.Config{Component: log.ComponentAuth})
	return NewService(users, testSecret, time.Hour, 16, time.Minute, logger)
}

func testUser(t *testing.T, password string) core.User {
	return core.User{
		ID:           "u1",
		Username:     "bendahara",
		DisplayName:  "Budi",
		Role:         core.RoleElevated,
		PasswordHash: hashPassword(t, password),
	}
}

func TestService_SignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "rahasia-kas")
	users.EXPECT().GetUserByUsername(gomock.Any(), "bendahara").Return(user, nil)

	session, err := svc.SignIn(context.Background(), " bendahara ", "rahasia-kas")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "u1", session.User.ID)

	claims, err := ParseToken(testSecret, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "elevated", claims.Role)
}

func TestService_SignIn_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	t.Run("unknown username", func(t *testing.T) {
		users.EXPECT().GetUserByUsername(gomock.Any(), "ghost").Return(core.User{}, storage.ErrNotFound)

		_, err := svc.SignIn(context.Background(), "ghost", "whatever")
		// The error never reveals which part was wrong
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		users.EXPECT().GetUserByUsername(gomock.Any(), "bendahara").Return(testUser(t, "rahasia-kas"), nil)

		_, err := svc.SignIn(context.Background(), "bendahara", "salah")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("store failure is not a credentials error", func(t *testing.T) {
		users.EXPECT().GetUserByUsername(gomock.Any(), "bendahara").Return(core.User{}, errors.New("db locked"))

		_, err := svc.SignIn(context.Background(), "bendahara", "rahasia-kas")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_CurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "rahasia-kas")
	token, err := GenerateToken(testSecret, user.ID, string(user.Role), time.Hour)
	require.NoError(t, err)

	// First resolution hits the store, the second is served from cache
	users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil).Times(1)

	got, err := svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.DisplayName)

	got, err = svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}

func TestService_CurrentUser_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.CurrentUser(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "u1", "elevated", -time.Hour)
		require.NoError(t, err)

		_, err = svc.CurrentUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("other-secret", "u1", "elevated", time.Hour)
		require.NoError(t, err)

		_, err = svc.CurrentUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("profile deleted while session valid", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "gone", "standard", time.Hour)
		require.NoError(t, err)

		users.EXPECT().GetUserByID(gomock.Any(), "gone").Return(core.User{}, storage.ErrNotFound)

		_, err = svc.CurrentUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestService_SignOut_InvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "rahasia-kas")
	token, err := GenerateToken(testSecret, user.ID, string(user.Role), time.Hour)
	require.NoError(t, err)

	// Cache miss before and after sign-out: two store hits
	users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil).Times(2)

	_, err = svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)

	svc.SignOut(token)

	_, err = svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)

	// Sign-out with a garbage token is a no-op
	svc.SignOut("not-a-token")
}

func TestService_ChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "lama-123")
	token, err := GenerateToken(testSecret, user.ID, string(user.Role), time.Hour)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil)
		users.EXPECT().
			UpdateUserPassword(gomock.Any(), "u1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, hash string) error {
				// The stored value must verify against the new password
				return bcrypt.CompareHashAndPassword([]byte(hash), []byte("baru-456"))
			})

		require.NoError(t, svc.ChangePassword(context.Background(), token, "lama-123", "baru-456"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil)

		err := svc.ChangePassword(context.Background(), token, "salah", "baru-456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak new password", func(t *testing.T) {
		// Profile is cached from the previous subtest, no store hit
		err := svc.ChangePassword(context.Background(), token, "lama-123", "abc")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestService_UpdateDisplayName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "rahasia-kas")
	token, err := GenerateToken(testSecret, user.ID, string(user.Role), time.Hour)
	require.NoError(t, err)

	users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil)
	users.EXPECT().UpdateUserDisplayName(gomock.Any(), "u1", "Budi Santoso").Return(nil)

	got, err := svc.UpdateDisplayName(context.Background(), token, "  Budi Santoso  ")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", got.DisplayName)

	// The cache now serves the renamed profile without another store hit
	cached, err := svc.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", cached.DisplayName)
}

func TestService_UpdateDisplayName_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mock_auth.NewMockUserStore(ctrl)
	svc := newTestService(t, users)

	user := testUser(t, "rahasia-kas")
	token, err := GenerateToken(testSecret, user.ID, string(user.Role), time.Hour)
	require.NoError(t, err)

	users.EXPECT().GetUserByID(gomock.Any(), "u1").Return(user, nil)

	_, err = svc.UpdateDisplayName(context.Background(), token, "   ")
	assert.ErrorIs(t, err, ErrEmptyDisplayName)
}
