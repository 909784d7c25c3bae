package gitsync

// OperationResult is the envelope produced for callers outside this
// module. Hash and Error are never both set.
type OperationResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResultOf wraps a git operation outcome into the envelope.
func ResultOf(hash, message string, err error) OperationResult {
	if err != nil {
		return OperationResult{Error: err.Error()}
	}
	return OperationResult{Success: true, Hash: hash, Message: message}
}
