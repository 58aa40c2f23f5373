// Package workspace allocates one private directory per judge job.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"
)

const (
	InputFileName  = "input.txt"
	OutputFileName = "output.txt"
	ErrorFileName  = "error.txt"
	BinaryFileName = "main"
)

// Workspace is the directory exclusively owned by one job.
type Workspace struct {
	ID   string
	Path string
}

// File returns the absolute path of name inside the workspace.
func (w *Workspace) File(name string) string {
	return filepath.Join(w.Path, name)
}

// WriteFile writes data to name inside the workspace.
func (w *Workspace) WriteFile(name string, data []byte) error {
	if err := os.WriteFile(w.File(name), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Manager creates and destroys workspaces below a single root directory.
// Concurrent jobs never share a directory, so no locking is needed.
type Manager struct {
	root string
}

func NewManager(root string) (*Manager, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "oj-jobs")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Manager{root: abs}, nil
}

// Root returns the absolute workspace root.
func (m *Manager) Root() string {
	return m.root
}

// Create allocates a fresh workspace under a random id.
func (m *Manager) Create() (*Workspace, error) {
	return m.CreateNamed(uuid.NewString())
}

// CreateNamed allocates the workspace for a caller-chosen job id. Mkdir (not
// MkdirAll) makes an id collision an error instead of two jobs sharing one
// directory.
func (m *Manager) CreateNamed(id string) (*Workspace, error) {
	path, err := m.Resolve(id)
	if err != nil {
		return nil, err
	}
	if err := os.Mkdir(path, 0755); err != nil {
		return nil, fmt.Errorf("create workspace %s: %w", id, err)
	}
	return &Workspace{ID: id, Path: path}, nil
}

// Resolve maps a job id onto its workspace path without letting the id
// escape the root.
func (m *Manager) Resolve(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid workspace id: %q", id)
	}
	path, err := securejoin.SecureJoin(m.root, id)
	if err != nil {
		return "", fmt.Errorf("resolve workspace %s: %w", id, err)
	}
	return path, nil
}

// Destroy removes the workspace at path and everything below it. Removing a
// workspace that is already gone is not an error.
func (m *Manager) Destroy(path string) error {
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve workspace path: %w", err)
	}
	if !m.contains(abs) {
		return fmt.Errorf("refusing to remove %s: outside workspace root %s", abs, m.root)
	}
	if err := os.RemoveAll(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove workspace %s: %w", abs, err)
	}
	return nil
}

func (m *Manager) contains(path string) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
