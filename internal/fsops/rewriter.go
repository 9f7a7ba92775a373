package fsops

// Rewriter abstracts reading and writing file contents
// Enables mocking in tests to prove dry-run never writes
type Rewriter interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}
