package exitcodes

// Exit codes for the header-sweep CLI
// These codes form the operational contract with scripts and CI
const (
	Success       = 0 // Successful execution (per-file errors do not change this)
	InvalidTarget = 2 // Target directory missing, not a directory, or unusable
	InvalidConfig = 3 // Configuration file invalid
	RuntimeError  = 4 // Runtime error during execution
)
