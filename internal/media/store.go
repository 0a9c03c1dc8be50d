package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userContentDir = "user_content"

// Store manages files uploaded for guild notifications under
// <root>/user_content/<guildID>/<filename>
type Store struct {
	rootPath string
}

// FileInfo describes a stored file
type FileInfo struct {
	Name    string
	ModTime time.Time
}

// New creates a store rooted at the data directory
func New(rootPath string) (*Store, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(filepath.Join(p, userContentDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create user content directory under %s: %w", p, err)
	}
	return &Store{rootPath: p}, nil
}

// GuildDir returns the directory holding a guild's files
func (s *Store) GuildDir(guildID string) string {
	return filepath.Join(s.rootPath, userContentDir, filepath.Base(guildID))
}

// Path returns the full path of a stored file
func (s *Store) Path(guildID, name string) string {
	return filepath.Join(s.GuildDir(guildID), filepath.Base(name))
}

// Create makes a new uniquely named file in the guild directory, keeping the
// extension of originalName. The caller must close the returned file.
func (s *Store) Create(guildID, originalName string) (string, *os.File, error) {
	dir := s.GuildDir(guildID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create guild directory %s: %w", dir, err)
	}

	name := uuid.NewString() + cleanExtension(originalName)
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create file %s: %w", name, err)
	}
	return name, f, nil
}

// Read returns the contents of a stored file
func (s *Store) Read(guildID, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(guildID, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("attachment %s not found: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read attachment %s: %w", name, err)
	}
	return data, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(guildID, name string) error {
	err := os.Remove(s.Path(guildID, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", name, err)
	}
	return nil
}

// Guilds lists the guild IDs that have a content directory
func (s *Store) Guilds() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.rootPath, userContentDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list guild directories: %w", err)
	}

	var guilds []string
	for _, e := range entries {
		if e.IsDir() {
			guilds = append(guilds, e.Name())
		}
	}
	return guilds, nil
}

// List returns the files stored for a guild
func (s *Store) List(guildID string) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.GuildDir(guildID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list files for guild %s: %w", guildID, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// cleanExtension keeps only a plain ".ext" suffix
func cleanExtension(name string) string {
	ext := filepath.Ext(filepath.Base(name))
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
