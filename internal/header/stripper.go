package header

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"header-sweep/internal/config"
	"header-sweep/internal/fsops"
)

// ErrUnreadable marks files that could not be read or decoded as text.
// Callers treat it as skip-and-continue, never as a fatal condition.
var ErrUnreadable = errors.New("unreadable file")

// WriteError reports a matched file whose stripped content could not be
// written back. The file keeps its original content.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// StripInfo describes what a successful strip removed.
type StripInfo struct {
	Signature    string // The signature that matched
	LinesRemoved int    // Header lines plus the optional blank separator
	BytesRemoved int64
}

// Result is the outcome of processing one file.
type Result struct {
	Path     string
	Modified bool
	StripInfo
}

// Stripper removes a fixed-size boilerplate header from file contents.
// Signatures and the header line count are explicit state, not globals,
// so tests can exercise alternate banners.
type Stripper struct {
	signatures  []string
	headerLines int
	rw          fsops.Rewriter
}

// NewStripper creates a Stripper. Empty signatures or a non-positive
// line count fall back to the 42 banner defaults.
func NewStripper(signatures []string, headerLines int) *Stripper {
	if len(signatures) == 0 {
		signatures = []string{config.DefaultSignature1, config.DefaultSignature2}
	}
	if headerLines <= 0 {
		headerLines = config.DefaultHeaderLines
	}
	return &Stripper{
		signatures:  signatures,
		headerLines: headerLines,
		rw:          fsops.OSRewriter{},
	}
}

// SetRewriter replaces the filesystem layer, for tests.
func (s *Stripper) SetRewriter(rw fsops.Rewriter) {
	if rw != nil {
		s.rw = rw
	}
}

// Strip returns the content with the header region removed. The bool
// reports whether a signature matched; non-matching content is returned
// unchanged.
//
// On a match exactly headerLines lines are dropped from the front,
// regardless of what they contain. If the line immediately after the
// removed block is empty or whitespace-only it is dropped too; only
// that single line is ever consumed.
func (s *Stripper) Strip(content string) (string, StripInfo, bool) {
	sig := s.matchSignature(content)
	if sig == "" {
		return content, StripInfo{}, false
	}

	lines := splitLines(content)

	kept := []string{}
	removed := len(lines)
	if len(lines) > s.headerLines {
		kept = lines[s.headerLines:]
		removed = s.headerLines
	}

	if len(kept) > 0 && strings.TrimSpace(kept[0]) == "" {
		kept = kept[1:]
		removed++
	}

	out := strings.Join(kept, "")
	info := StripInfo{
		Signature:    sig,
		LinesRemoved: removed,
		BytesRemoved: int64(len(content) - len(out)),
	}
	return out, info, true
}

// ProcessFile reads path, strips the header if present, and writes the
// result back in place. Read failures return an error wrapping
// ErrUnreadable; write failures return a *WriteError. In both cases the
// returned Result reports Modified=false.
func (s *Stripper) ProcessFile(path string) (Result, error) {
	return s.process(path, true)
}

// PreviewFile is ProcessFile without the write-back. Modified=true
// means the file would be modified.
func (s *Stripper) PreviewFile(path string) (Result, error) {
	return s.process(path, false)
}

func (s *Stripper) process(path string, write bool) (Result, error) {
	res := Result{Path: path}

	data, err := s.rw.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if !utf8.Valid(data) {
		return res, fmt.Errorf("%w: %s: not valid text", ErrUnreadable, path)
	}

	stripped, info, matched := s.Strip(string(data))
	if !matched {
		return res, nil
	}

	if write {
		if err := s.rw.WriteFile(path, []byte(stripped)); err != nil {
			return res, &WriteError{Path: path, Err: err}
		}
	}

	res.Modified = true
	res.StripInfo = info
	return res, nil
}

func (s *Stripper) matchSignature(content string) string {
	for _, sig := range s.signatures {
		if strings.HasPrefix(content, sig) {
			return sig
		}
	}
	return ""
}

// splitLines splits content into lines keeping their terminators, so a
// later join reproduces untouched regions byte for byte.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
