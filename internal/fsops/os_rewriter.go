package fsops

import "os"

// OSRewriter implements Rewriter using real os package calls
type OSRewriter struct{}

func (OSRewriter) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile truncates and replaces the file's content, preserving its mode.
func (OSRewriter) WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
