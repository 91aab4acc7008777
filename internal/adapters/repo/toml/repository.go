package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	UsersPathKey = "users.path"

	usersFileMode   = 0o600
	usersDirMode    = 0o700
	usersConfigDir  = ".nissmart"
	usersConfigFile = "users.toml"
	tempFilePattern = ".users-*.toml.tmp"
)

// UserDirectory remembers the users created from this machine so the
// dashboard can offer them for selection. It stores identity only; balances
// always come from the ledger.
type UserDirectory struct {
	usersPath string
	mu        *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(cfg *viper.Viper) (*UserDirectory, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg.SetDefault(UsersPathKey, filepath.Join(homeDir, usersConfigDir, usersConfigFile))

	usersPath := cfg.GetString(UsersPathKey)
	if usersPath == "" {
		return nil, errors.New("users path is empty")
	}
	usersPath, err = normalizeUsersPath(usersPath, homeDir)
	if err != nil {
		return nil, err
	}

	return &UserDirectory{usersPath: usersPath, mu: lockForPath(usersPath)}, nil
}

// Path is the resolved location of the users file.
func (r *UserDirectory) Path() string {
	return r.usersPath
}

func (r *UserDirectory) Save(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.ID <= 0 {
		return fmt.Errorf("save user: invalid id %d", user.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(user)
	updated := false
	for i := range file.Users {
		if file.Users[i].ID == encoded.ID {
			file.Users[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Users = append(file.Users, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *UserDirectory) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(file.Users))
	for _, entry := range file.Users {
		users = append(users, fromSchema(entry))
	}

	return domain.NormalizeUsers(users), nil
}

// Get returns the remembered record for id, or domain.ErrUserNotFound.
func (r *UserDirectory) Get(ctx context.Context, id domain.UserID) (domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return domain.User{}, err
	}

	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *UserDirectory) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.usersPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read users file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode users file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *UserDirectory) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.usersPath), usersDirMode); err != nil {
		return fmt.Errorf("create users directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode users file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.usersPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp users file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp users file: %w", err)
	}
	if err := tempFile.Chmod(usersFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp users file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp users file: %w", err)
	}

	if err := os.Rename(tempName, r.usersPath); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizeUsersPath(path string, homeDir string) (string, error) {
	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve users path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(user domain.User) userSchema {
	return userSchema{
		ID:        int64(user.ID),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: formatTime(user.CreatedAt),
	}
}

func fromSchema(user userSchema) domain.User {
	return domain.User{
		ID:        domain.UserID(user.ID),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: parseTime(user.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
