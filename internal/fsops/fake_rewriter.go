package fsops

import (
	"fmt"
	"os"
)

// FakeRewriter implements Rewriter for testing
// Serves contents from an in-memory map and records every write call
type FakeRewriter struct {
	Files  map[string][]byte
	Writes []string
}

func NewFakeRewriter() *FakeRewriter {
	return &FakeRewriter{Files: make(map[string][]byte)}
}

func (f *FakeRewriter) ReadFile(path string) ([]byte, error) {
	data, ok := f.Files[path]
	if !ok {
		return nil, fmt.Errorf("fake rewriter: %s: %w", path, os.ErrNotExist)
	}
	return data, nil
}

func (f *FakeRewriter) WriteFile(path string, data []byte) error {
	f.Writes = append(f.Writes, "write:"+path)
	f.Files[path] = data
	return nil
}
