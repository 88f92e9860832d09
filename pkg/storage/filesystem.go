// Package storage keeps generated report files on local disk and issues
// HMAC-signed download tokens for them.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportStorage persists generated report files under a base directory.
type ReportStorage struct {
	baseDir string
}

// NewReportStorage ensures the base directory exists.
func NewReportStorage(baseDir string) (*ReportStorage, error) {
	if baseDir == "" {
		baseDir = "./reports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	return &ReportStorage{baseDir: baseDir}, nil
}

// Save writes data to the relative path and returns that path.
func (s *ReportStorage) Save(relPath string, data []byte) (string, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return relPath, nil
}

// Open returns a read-only handle for a stored report.
func (s *ReportStorage) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report file: %w", err)
	}
	return file, nil
}

// Delete removes a stored report, ignoring files already gone.
func (s *ReportStorage) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes report files older than ttl and returns how many
// were deleted.
func (s *ReportStorage) CleanupOlderThan(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := 0
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		deleted++
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("cleanup reports: %w", err)
	}
	return deleted, nil
}

// CopyTo streams a stored report into w.
func (s *ReportStorage) CopyTo(w io.Writer, relPath string) error {
	file, err := s.Open(relPath)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("stream report file: %w", err)
	}
	return nil
}

// resolve confines relPath to the base directory. Absolute paths and paths
// escaping the base via ".." segments are rejected.
func (s *ReportStorage) resolve(relPath string) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("invalid report path %q", relPath)
	}
	clean := filepath.Clean(relPath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid report path %q", relPath)
	}
	return filepath.Join(s.baseDir, clean), nil
}
