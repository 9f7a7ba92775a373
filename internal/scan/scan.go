package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// ErrInvalidTarget reports a walk root that is missing or not a directory.
// It is the only fatal error the walker produces.
var ErrInvalidTarget = errors.New("invalid target directory")

// Candidate is one regular file discovered under the walk root.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Scanner discovers candidate files under a root directory
type Scanner struct {
	logger Logger
}

// NewScanner creates a new Scanner with the given logger
func NewScanner(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	return &Scanner{
		logger: &stdLogger{Logger: logger},
	}
}

// Walk returns every regular file reachable under root, at any depth.
// Symlinks and special files are not followed. Unreadable subtrees are
// logged and skipped; the walk continues with siblings.
func (s *Scanner) Walk(root string) ([]Candidate, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTarget, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s: not a directory", ErrInvalidTarget, root)
	}

	var candidates []Candidate

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				s.logger.Warn("Permission denied", "path", path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if os.IsNotExist(err) {
				// Entry vanished between listing and stat
				return nil
			}
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.logger.Warn("Failed to stat file", "path", path, "error", err)
			return nil
		}

		candidates = append(candidates, Candidate{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan path %s: %w", root, err)
	}

	s.logger.Info("Scan complete",
		"root", root,
		"candidates_found", len(candidates),
	)

	return candidates, nil
}
