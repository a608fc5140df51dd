// Package patch applies a unified diff to a working tree via the system
// patch(1) binary: write the diff to a scoped temp directory, invoke the
// tool, and on failure leave the rejects and captured output behind for
// inspection instead of swallowing them.
package patch

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sidediff/sidediff/pkg/reviewdiff"
)

// Applier runs patch(1) against files rooted at Dir. The zero value uses
// "patch" off $PATH and the OS temp directory.
type Applier struct {
	// Dir is the working tree the patch is applied against.
	Dir string
	// Bin overrides the patch binary; defaults to "patch".
	Bin string
}

var _ reviewdiff.Patcher = (*Applier)(nil)

// Apply writes diffData to a temp file scoped to a fresh subdirectory of
// the system temp dir, runs `patch -p1` against workDir (falling back to
// a.Dir if workDir is empty), and reports the result.
//
// On success the temp directory is removed before returning. On failure it
// is left on disk (its path is reported in PatchResult.RejPath) along with
// the combined stdout/stderr from the tool, so a caller investigating a
// broken patch has something to look at, instead of best-effort cleaning
// it up.
func (a *Applier) Apply(ctx context.Context, workDir string, diffData []byte) (reviewdiff.PatchResult, error) {
	if workDir == "" {
		workDir = a.Dir
	}
	bin := a.Bin
	if bin == "" {
		bin = "patch"
	}

	tmpDir, err := os.MkdirTemp("", "sidediff-patch-")
	if err != nil {
		return reviewdiff.PatchResult{}, fmt.Errorf("patch: creating temp dir: %w", err)
	}

	diffPath := filepath.Join(tmpDir, "changes.diff")
	if err := os.WriteFile(diffPath, diffData, 0o600); err != nil {
		os.RemoveAll(tmpDir)
		return reviewdiff.PatchResult{}, fmt.Errorf("patch: writing diff file: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, "-p1", "-d", workDir, "-i", diffPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()

	if runErr == nil {
		if err := os.RemoveAll(tmpDir); err != nil {
			return reviewdiff.PatchResult{}, fmt.Errorf("patch: cleaning up temp dir: %w", err)
		}
		return reviewdiff.PatchResult{Applied: true}, nil
	}

	return reviewdiff.PatchResult{
		Applied: false,
		RejPath: tmpDir,
		ToolLog: out.String(),
	}, fmt.Errorf("patch: %s failed: %w", bin, runErr)
}
