package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfcarports/salesdesk/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "users.json"))
}

func TestSetAndVerifyPassword(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetPassword("ivan@wolfcarports.com", "hunter2hunter2"))

	u, err := store.VerifyPassword("ivan@wolfcarports.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ivan@wolfcarports.com", u.Email)
	assert.Equal(t, models.RoleRep, u.Role)
	assert.NotEmpty(t, u.ID)

	// Wrong password fails quietly
	u, err = store.VerifyPassword("ivan@wolfcarports.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	// Unknown email fails quietly
	u, err = store.VerifyPassword("nobody@wolfcarports.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSetPasswordRehashesExistingUser(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetPassword("ivan@wolfcarports.com", "first"))
	first, err := store.GetUser("ivan@wolfcarports.com")
	require.NoError(t, err)

	require.NoError(t, store.SetPassword("ivan@wolfcarports.com", "second"))
	second, err := store.GetUser("ivan@wolfcarports.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "reset must not create a new user")
	assert.NotEqual(t, first.PasswordHash, second.PasswordHash)
	assert.NotEqual(t, first.Salt, second.Salt, "each hash gets a fresh salt")

	u, err := store.VerifyPassword("ivan@wolfcarports.com", "first")
	require.NoError(t, err)
	assert.Nil(t, u)
	u, err = store.VerifyPassword("ivan@wolfcarports.com", "second")
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestUpsertUserPreservesCredentials(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetPassword("dana@wolfcarports.com", "managerpass"))

	u, err := store.GetUser("dana@wolfcarports.com")
	require.NoError(t, err)
	u.Role = models.RoleManager
	u.DisplayName = "Dana Wolf"
	u.OwnerValue = "Dana Wolf"
	u.RepPhone = "+15551239999"
	u.Salt = ""
	u.PasswordHash = ""
	require.NoError(t, store.UpsertUser(*u))

	verified, err := store.VerifyPassword("dana@wolfcarports.com", "managerpass")
	require.NoError(t, err)
	require.NotNil(t, verified, "profile update must not drop the password")
	assert.Equal(t, models.RoleManager, verified.Role)
	assert.Equal(t, "Dana Wolf", verified.DisplayName)
}

func TestListUsersEmptyStore(t *testing.T) {
	store := newTestStore(t)
	users, err := store.ListUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}
