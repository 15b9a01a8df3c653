package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/shared"
)

type memoryUsersRepo struct {
	users  map[string]*User
	nextID int64
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{users: make(map[string]*User)}
}

func (r *memoryUsersRepo) Insert(ctx context.Context, username, passwordHash string, isAdmin, canManifest bool) (*User, error) {
	if _, exists := r.users[username]; exists {
		return nil, shared.ErrDuplicate
	}
	r.nextID++
	u := &User{ID: r.nextID, Username: username, PasswordHash: passwordHash, IsAdmin: isAdmin, CanManifest: canManifest, IsActive: true}
	r.users[username] = u
	return u, nil
}

func (r *memoryUsersRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryUsersRepo) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUsersRepo) SetPassword(ctx context.Context, username, passwordHash string) error {
	u, ok := r.users[username]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memoryUsersRepo) SetActive(ctx context.Context, username string, active bool) error {
	u, ok := r.users[username]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func TestCreateAndAuthenticate(t *testing.T) {
	svc := NewService(newMemoryUsersRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", created.PasswordHash)

	user, err := svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "wrong"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, Credentials{Username: "nobody", Password: "s3cret-pass"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCanManifestFlag(t *testing.T) {
	svc := NewService(newMemoryUsersRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "s3cret-pass", CanManifest: true})
	require.NoError(t, err)
	require.True(t, created.CanManifest)

	user, err := svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.True(t, user.CanManifest)
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := NewService(newMemoryUsersRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "other-pass"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := newMemoryUsersRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, "dispatcher", false))

	_, err = svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "s3cret-pass"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc := NewService(newMemoryUsersRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "dispatcher", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.ChangePassword(ctx, "dispatcher", "new-pass-123"))

	_, err = svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "s3cret-pass"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, Credentials{Username: "dispatcher", Password: "new-pass-123"})
	require.NoError(t, err)
}
