package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, usersPath string) *UserDirectory {
	t.Helper()

	config := viper.New()
	config.Set(UsersPathKey, usersPath)

	repo, err := NewUserDirectory(config)
	require.NoError(t, err)
	return repo
}

func TestUserDirectoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestDirectory(t, filepath.Join(t.TempDir(), "users.toml"))

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alice := domain.User{ID: 1, Name: "Alice", Email: "alice@example.com", CreatedAt: created}
	bob := domain.User{ID: 2, Name: "Bob"}

	require.NoError(t, repo.Save(context.Background(), alice))
	require.NoError(t, repo.Save(context.Background(), bob))

	got, err := repo.Get(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.User{alice, bob}, users)
}

func TestUserDirectorySaveUpsertsByID(t *testing.T) {
	t.Parallel()

	repo := newTestDirectory(t, filepath.Join(t.TempDir(), "users.toml"))

	require.NoError(t, repo.Save(context.Background(), domain.User{ID: 7, Name: "Old"}))
	require.NoError(t, repo.Save(context.Background(), domain.User{ID: 8, Name: "Other"}))
	require.NoError(t, repo.Save(context.Background(), domain.User{ID: 7, Name: "New"}))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "New", users[0].Name)
	assert.Equal(t, domain.UserID(8), users[1].ID)
}

func TestUserDirectorySaveRejectsInvalidID(t *testing.T) {
	t.Parallel()

	repo := newTestDirectory(t, filepath.Join(t.TempDir(), "users.toml"))

	err := repo.Save(context.Background(), domain.User{ID: 0, Name: "Nobody"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid id")
}

func TestUserDirectorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewUserDirectory(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), domain.User{ID: 1, Name: "Alice"}))

	usersPath := filepath.Join(homeDir, ".nissmart", "users.toml")
	assert.Equal(t, usersPath, repo.Path())

	info, err := os.Stat(usersPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestUserDirectoryExpandsHomePrefix(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	config := viper.New()
	config.Set(UsersPathKey, "~/custom/users.toml")

	repo, err := NewUserDirectory(config)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "custom", "users.toml"), repo.Path())
}

func TestUserDirectoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestDirectory(t, filepath.Join(t.TempDir(), "missing", "users.toml"))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.Get(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserDirectoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	usersPath := filepath.Join(t.TempDir(), "users.toml")
	require.NoError(t, os.WriteFile(usersPath, []byte("users = ["), 0o600))

	repo := newTestDirectory(t, usersPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode users file")
}

func TestUserDirectoryListSkipsInvalidEntries(t *testing.T) {
	t.Parallel()

	usersPath := filepath.Join(t.TempDir(), "users.toml")
	require.NoError(t, os.WriteFile(usersPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[users]]",
		"id = 0",
		"name = 'ghost'",
		"",
		"[[users]]",
		"id = 4",
		"name = 'Dana'",
		"created_at = 'not-a-time'",
		"",
	}, "\n")), 0o600))

	repo := newTestDirectory(t, usersPath)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.User{ID: 4, Name: "Dana"}, users[0])
}

func TestUserDirectorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestDirectory(t, filepath.Join(t.TempDir(), "users.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.User{ID: 1, Name: "Alice"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUserDirectoryConcurrentSavesAcrossInstancesPreserveAllUsers(t *testing.T) {
	t.Parallel()

	usersPath := filepath.Join(t.TempDir(), "users.toml")
	repoA := newTestDirectory(t, usersPath)
	repoB := newTestDirectory(t, usersPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		<-start
		for i := 1; i <= perRepoWrites; i++ {
			errCh <- repoA.Save(context.Background(), domain.User{ID: domain.UserID(i), Name: "A"})
		}
	}()

	go func() {
		defer wg.Done()
		<-start
		for i := 1; i <= perRepoWrites; i++ {
			errCh <- repoB.Save(context.Background(), domain.User{ID: domain.UserID(1000 + i), Name: "B"})
		}
	}()

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	users, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, perRepoWrites*2)
}

func TestUserDirectorySerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	usersPath := filepath.Join(t.TempDir(), "users.toml")
	repo := newTestDirectory(t, usersPath)

	require.NoError(t, repo.Save(context.Background(), domain.User{ID: 1, Name: "Alice"}))

	data, err := os.ReadFile(usersPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "[[users]]")
}

func TestUserDirectoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	usersPath := filepath.Join(t.TempDir(), "users.toml")
	require.NoError(t, os.WriteFile(usersPath, []byte("version = 999\n\nusers = []\n"), 0o600))

	repo := newTestDirectory(t, usersPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported users schema version")
}
