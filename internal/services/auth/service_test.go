package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendra/internal/models"
	"vendra/internal/repositories"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newFakeUserRepo(), "test-secret", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "vendor@shop.test", "s3cretpass", "The Shop")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, user.Role)
	assert.NotEqual(t, "s3cretpass", user.Password, "password must be stored hashed")

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "x@shop.test", "short", "")
		assert.Error(t, err)
	})

	t.Run("valid login issues parseable token", func(t *testing.T) {
		loggedIn, token, err := svc.Login(ctx, "vendor@shop.test", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)

		claims, err := svc.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, models.RoleVendor, claims.Role)
		assert.False(t, claims.IsAdmin())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "vendor@shop.test", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@shop.test", "s3cretpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other := NewService(newFakeUserRepo(), "other-secret", time.Hour)
		_, token, err := svc.Login(ctx, "vendor@shop.test", "s3cretpass")
		require.NoError(t, err)
		_, err = other.ParseToken(token)
		assert.Error(t, err)
	})
}
