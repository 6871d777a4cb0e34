package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/compozy/prflow/internal/domain"
	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// StateSchemaVersion defines the current schema version for state files
	StateSchemaVersion = "1.0.0"
	// StateFilePermissions defines the permissions for state files
	StateFilePermissions = 0600
	// StateDirPermissions defines the permissions for state directory
	StateDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

var (
	ErrSessionNotFound = errors.New("session not found")
	errLockBusy        = errors.New("lock is held by another process")
)

// StateRepository persists session journals
type StateRepository interface {
	Save(ctx context.Context, state *domain.SessionState) error
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)
	LoadLatest(ctx context.Context) (*domain.SessionState, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

// StateMetadata contains metadata about the state file
type StateMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StateWrapper wraps the state with metadata
type StateWrapper struct {
	Metadata StateMetadata        `json:"metadata"`
	State    *domain.SessionState `json:"state"`
}

// JSONStateRepository stores one JSON file per session.
// Locks are taken with flock on the host filesystem, so fs must map paths onto it.
type JSONStateRepository struct {
	fs       afero.Fs
	stateDir string
	log      *zap.Logger
	mu       sync.RWMutex
}

// NewJSONStateRepository creates a new JSON-based state repository
func NewJSONStateRepository(fs afero.Fs, stateDir string, log *zap.Logger) StateRepository {
	if stateDir == "" {
		stateDir = ".prflow-state"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONStateRepository{
		fs:       fs,
		stateDir: stateDir,
		log:      log,
	}
}

// Save writes the journal atomically under an exclusive lock
func (r *JSONStateRepository) Save(ctx context.Context, state *domain.SessionState) error {
	if err := r.fs.MkdirAll(r.stateDir, StateDirPermissions); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}
	lock := flock.New(r.lockFilename(state.SessionID))
	if err := r.acquire(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer r.unlock(lock)
	stateData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state for checksum: %w", err)
	}
	wrapper := StateWrapper{
		Metadata: StateMetadata{
			SchemaVersion: StateSchemaVersion,
			Checksum:      checksum(stateData),
			CreatedAt:     state.StartedAt,
			UpdatedAt:     time.Now(),
		},
		State: state,
	}
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state wrapper: %w", err)
	}
	filename := r.stateFilename(state.SessionID)
	if err := r.writeAtomic(filename, data); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeAtomic(r.latestLink(), []byte(filename)); err != nil {
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// Load reads a journal under a shared lock and verifies its checksum
func (r *JSONStateRepository) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	filename := r.stateFilename(sessionID)
	if ok, err := afero.Exists(r.fs, filename); err != nil {
		return nil, fmt.Errorf("failed to check state file: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	lock := flock.New(r.lockFilename(sessionID))
	if err := r.acquire(ctx, lock.TryRLock); err != nil {
		return nil, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	defer r.unlock(lock)
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var wrapper StateWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != StateSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			StateSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	if wrapper.State == nil {
		return nil, fmt.Errorf("state file %s has no state", filename)
	}
	stateData, err := json.Marshal(wrapper.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state for checksum validation: %w", err)
	}
	if wrapper.Metadata.Checksum != checksum(stateData) {
		return nil, fmt.Errorf("state checksum mismatch: data may be corrupted")
	}
	return wrapper.State, nil
}

// LoadLatest loads the session most recently saved
func (r *JSONStateRepository) LoadLatest(ctx context.Context) (*domain.SessionState, error) {
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, r.latestLink())
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no saved session in %s", ErrSessionNotFound, r.stateDir)
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	sessionID := sessionIDFromFilename(string(data))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", string(data))
	}
	return r.Load(ctx, sessionID)
}

// Delete removes a journal and its lock file
func (r *JSONStateRepository) Delete(ctx context.Context, sessionID string) error {
	lockFile := r.lockFilename(sessionID)
	lock := flock.New(lockFile)
	if err := r.acquire(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire lock for deletion: %w", err)
	}
	defer r.unlock(lock)
	if err := r.fs.Remove(r.stateFilename(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	if err := r.fs.Remove(lockFile); err != nil && !os.IsNotExist(err) {
		r.log.Warn("failed to remove lock file", zap.String("file", lockFile), zap.Error(err))
	}
	return nil
}

// Exists checks if a journal exists
func (r *JSONStateRepository) Exists(_ context.Context, sessionID string) (bool, error) {
	ok, err := afero.Exists(r.fs, r.stateFilename(sessionID))
	if err != nil {
		return false, fmt.Errorf("failed to check state file: %w", err)
	}
	return ok, nil
}

// acquire polls try until it reports the lock as taken or LockTimeout elapses
func (r *JSONStateRepository) acquire(ctx context.Context, try func() (bool, error)) error {
	backoff := retry.WithMaxDuration(LockTimeout, retry.NewConstant(LockRetryInterval))
	return retry.Do(ctx, backoff, func(_ context.Context) error {
		locked, err := try()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
}

func (r *JSONStateRepository) unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		r.log.Warn("failed to unlock file", zap.String("file", lock.Path()), zap.Error(err))
	}
}

// writeAtomic writes through a temp file and renames it over filename
func (r *JSONStateRepository) writeAtomic(filename string, data []byte) error {
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, StateFilePermissions); err != nil {
		return err
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			r.log.Warn("failed to remove temp file", zap.String("file", tempFile), zap.Error(removeErr))
		}
		return err
	}
	return nil
}

func (r *JSONStateRepository) stateFilename(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf("session-%s.json", sessionID))
}

func (r *JSONStateRepository) lockFilename(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf(".session-%s.lock", sessionID))
}

func (r *JSONStateRepository) latestLink() string {
	return filepath.Join(r.stateDir, "latest")
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func sessionIDFromFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if !strings.HasPrefix(base, "session-") || !strings.HasSuffix(base, ".json") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(base, "session-"), ".json")
}
