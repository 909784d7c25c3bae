package gitsync

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
)

// SyncErrorKind classifies a repository synchronization failure.
type SyncErrorKind string

const (
	// SyncNetwork means the remote was unreachable or the transfer failed.
	SyncNetwork SyncErrorKind = "network"

	// SyncAuth means the remote rejected the credential.
	SyncAuth SyncErrorKind = "auth"

	// SyncConflict means local and remote history diverged; this module
	// never resolves divergence by force.
	SyncConflict SyncErrorKind = "conflict"
)

// SyncError is a classified git synchronization failure.
type SyncError struct {
	Kind SyncErrorKind
	Op   string
	Repo string
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Repo, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is matches any SyncError of the same kind.
func (e *SyncError) Is(target error) bool {
	var t *SyncError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the sync failure kind, or "" when err is not a SyncError.
func KindOf(err error) SyncErrorKind {
	var e *SyncError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// classify wraps a go-git failure into a SyncError nested in the shared
// taxonomy. fallback is the kind assumed for unrecognized failures of
// the operation, typically SyncNetwork for remote calls.
func classify(op, repo string, err error, fallback SyncErrorKind) error {
	if err == nil {
		return nil
	}
	kind := fallback
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod):
		kind = SyncAuth
	case errors.Is(err, gogit.ErrNonFastForwardUpdate):
		kind = SyncConflict
	case strings.Contains(err.Error(), "non-fast-forward"):
		// Push rejections arrive as formatted strings, not sentinel values.
		kind = SyncConflict
	case errors.Is(err, transport.ErrRepositoryNotFound):
		kind = SyncNetwork
	}
	return cmserr.Wrap(cmserr.CodeGitSync, op, repo, &SyncError{
		Kind: kind,
		Op:   op,
		Repo: repo,
		Err:  err,
	})
}
