package cart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the file name FilePersistence uses when none is given.
const DefaultFile = "valieria_cart.json"

// Persistence stores the serialised cart between runs.
type Persistence interface {
	// Load returns the saved state, or nil when nothing has been saved.
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FilePersistence keeps the cart in a JSON file.
type FilePersistence struct {
	path string
}

// NewFilePersistence returns a FilePersistence writing to path, or to
// DefaultFile in the user config directory when path is empty.
func NewFilePersistence(path string) (*FilePersistence, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "decor-store", DefaultFile)
	}
	return &FilePersistence{path: path}, nil
}

// Path returns the file the cart is stored in.
func (p *FilePersistence) Path() string {
	return p.path
}

func (p *FilePersistence) Load() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart file: %w", err)
	}
	return data, nil
}

// Save replaces the file atomically so a crash never leaves half a cart behind.
func (p *FilePersistence) Save(data []byte) (err error) {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return fmt.Errorf("create temp cart file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cart file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close cart file: %w", err)
	}
	if err = os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("replace cart file: %w", err)
	}
	return nil
}

func (p *FilePersistence) Clear() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cart file: %w", err)
	}
	return nil
}

// MemoryPersistence keeps the cart in memory.
type MemoryPersistence struct {
	mu   sync.Mutex
	data []byte
}

func (m *MemoryPersistence) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryPersistence) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryPersistence) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
