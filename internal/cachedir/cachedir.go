package cachedir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

// DefaultSubdir is the folder created under the platform cache directory
// when no explicit root is configured.
const DefaultSubdir = "latex_image"

// Manager maps render keys to directories under a single cache root.
// LaTeX equations get a persistent content-addressed directory; Typst renders
// share one ephemeral session directory that lives until Cleanup.
//
// The manager is constructed once at startup and handed to the backends, so
// tests can point it at a throwaway root instead of the real platform dirs.
type Manager struct {
	root string

	mu      sync.Mutex
	session string
}

// New creates a Manager rooted at root, or at the platform user cache
// directory under DefaultSubdir when root is empty. The root is created if
// absent. Cached directories are never expired here; the cache is unbounded
// and left to the user.
func New(root string) (*Manager, error) {
	if root == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve user cache dir: %w", err)
		}
		root = filepath.Join(base, DefaultSubdir)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache root %s: %w", root, err)
	}
	return &Manager{root: root}, nil
}

// Root returns the cache root directory.
func (m *Manager) Root() string {
	return m.root
}

// EquationDir returns the content-addressed directory for a LaTeX equation.
// The directory is not created; callers check for artifacts and Ensure it
// before the first render.
func (m *Manager) EquationDir(equation string) string {
	return filepath.Join(m.root, fmt.Sprintf("latex_%d", HashEquation(equation)))
}

// Ensure creates dir if it does not exist yet. Re-ensuring an existing
// directory is not an error: a crash between mkdir and the first artifact
// write must not wedge the cache key.
func (m *Manager) Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return nil
}

// SessionDir returns the process-scoped temporary directory used by the
// Typst backend, creating it on first use and reusing it afterwards.
func (m *Manager) SessionDir() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != "" {
		return m.session, nil
	}
	dir, err := os.MkdirTemp("", "typst_eq_")
	if err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	logger.WithComponent("cachedir").Debugf("created session dir %s", dir)
	m.session = dir
	return dir, nil
}

// Contains reports whether path points inside the cache root or the session
// directory. Used to keep the artifact-serving endpoint from reading
// arbitrary files.
func (m *Manager) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	for _, root := range []string{m.root, session} {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Cleanup removes the session directory, if one was created.
// LaTeX cache directories are deliberately left in place.
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == "" {
		return nil
	}
	dir := m.session
	m.session = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session dir %s: %w", dir, err)
	}
	return nil
}
