// Package reviewdiff is the impure shell around pkg/diffcore: it turns a
// pair of uploaded file archives into FileDiff records (one per file pair),
// orchestrates per-file diff generation and pagination, and defines the
// external collaborator interfaces a full review-board-style deployment
// needs (fetching revisions from an SCM, applying a patch, normalizing
// SCM-specific diff quirks, caching). Of these, only Patcher has an
// implementation in this module (pkg/patch).
package reviewdiff

import "context"

// Fetcher retrieves the contents of a file at a given revision from
// whatever source control system backs a review request. A deployment
// wires in one implementation per supported SCM (git, Perforce, Subversion,
// ...); this module ships none, since which one applies is a deployment
// concern, not a diffing concern.
type Fetcher interface {
	FetchFile(ctx context.Context, path, revision string) ([]byte, error)
}

// Patcher applies a patch file to a working tree and reports the result.
// See pkg/patch for the subprocess-based implementation.
type Patcher interface {
	Apply(ctx context.Context, workDir string, patch []byte) (PatchResult, error)
}

// PatchResult reports whether Patcher.Apply succeeded, and if not, where
// the rejected hunks (and any captured tool output) were left for
// inspection.
type PatchResult struct {
	Applied  bool
	RejPath  string
	ToolLog  string
}

// SCMNormalizer rewrites an SCM's raw diff headers into the canonical
// (depot path, revision) pairs FileDiff expects, absorbing per-SCM quirks
// (Perforce's lone trailing "\r", ClearCase's "@@/main/..." revision
// strings, and so on) before the file reaches pkg/diffcore.
type SCMNormalizer interface {
	NormalizeHeader(raw string) (path string, revision string, err error)
}

// Cache memoizes the expensive part of producing a diff view: rendering a
// FileDiff's chunks. Keys are caller-defined (typically a hash of the file
// pair's content plus the rendering Config). pkg/storage.Cache does not
// satisfy this interface (it has Get/Put/Del, not Get/Set).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
