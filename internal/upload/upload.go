package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/erazemk/katalog/internal/imaging"
)

var (
	// ErrNotFound is returned when a requested upload does not exist.
	ErrNotFound = errors.New("upload not found")

	// ErrOutsideDir is returned for paths that resolve outside the upload directory.
	ErrOutsideDir = errors.New("path outside upload directory")
)

// DefaultExtensions are the file extensions accepted when none are configured.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "gif"}

// DefaultMaxBytes is the largest accepted upload when none is configured.
const DefaultMaxBytes = 5 << 20

// URLPrefix is the path under which uploads are served.
const URLPrefix = "/uploads/"

// Config configures a Manager.
type Config struct {
	Dir               string
	AllowedExtensions []string
	MaxBytes          int64
}

// Manager stores and serves user-supplied images from one directory.
type Manager struct {
	dir      string
	allowed  map[string]bool
	maxBytes int64
}

// New creates the upload directory if needed and returns a Manager for it.
func New(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("upload directory not configured")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	exts := cfg.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[e] = true
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Manager{dir: dir, allowed: allowed, maxBytes: maxBytes}, nil
}

// Dir returns the absolute upload directory.
func (m *Manager) Dir() string {
	return m.dir
}

// MaxBytes returns the largest accepted upload size.
func (m *Manager) MaxBytes() int64 {
	return m.maxBytes
}

// IsAllowedExtension reports whether filename ends in an allowed extension.
// The comparison is case-sensitive: "photo.JPG" is rejected.
func (m *Manager) IsAllowedExtension(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return m.allowed[filename[i+1:]]
}

// Save stores an uploaded image and returns its retrieval URL. It returns an
// empty URL and no error when there is nothing acceptable to store: no file,
// a disallowed extension, or content that is not an allowed image. A file
// with the same sanitised name is overwritten.
func (m *Manager) Save(r io.Reader, filename string) (string, error) {
	if r == nil || filename == "" || !m.IsAllowedExtension(filename) {
		return "", nil
	}

	name := SecureFilename(filename)
	if name == "" || !m.IsAllowedExtension(name) {
		return "", nil
	}

	data, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return "", nil
	}
	if int64(len(data)) > m.maxBytes {
		slog.Warn("upload rejected", "file", name, "reason", "too large")
		return "", nil
	}

	img, err := imaging.Normalize(data)
	if err != nil {
		slog.Warn("upload rejected", "file", name, "error", err)
		return "", nil
	}

	path := filepath.Join(m.dir, name)
	if err := writeFile(path, img.Data); err != nil {
		return "", err
	}

	return URLPrefix + name, nil
}

// Delete removes a stored upload given its retrieval URL or filename.
// Inputs resolving outside the upload directory fail with ErrOutsideDir and
// touch nothing. Deleting a file that no longer exists is not an error.
func (m *Manager) Delete(stored string) error {
	path, err := m.resolve(strings.TrimPrefix(stored, URLPrefix))
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting upload: %w", err)
	}
	return nil
}

// Open opens a stored upload for reading.
func (m *Manager) Open(filename string) (*os.File, error) {
	path, err := m.resolve(filename)
	if err != nil {
		return nil, ErrNotFound
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading upload info: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

// resolve maps a filename to a path directly inside the upload directory.
func (m *Manager) resolve(name string) (string, error) {
	if name == "" {
		return "", ErrOutsideDir
	}
	path := filepath.Join(m.dir, filepath.FromSlash(name))
	if filepath.Dir(path) != m.dir {
		return "", ErrOutsideDir
	}
	return path, nil
}

// writeFile writes data through a temporary file so readers never see a
// partially written image.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}
	return nil
}
