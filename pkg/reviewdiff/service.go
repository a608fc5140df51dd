package reviewdiff

import (
	"context"
	"fmt"

	"github.com/sidediff/sidediff/pkg/diffcore"
	"github.com/sidediff/sidediff/pkg/storage"
)

// Profile is the subset of a viewer's preferences the highlighting policy
// needs. A deployment's user model will have more fields; only these
// matter here.
type Profile struct {
	SyntaxHighlightingEnabled bool
}

// HighlightPolicy decides whether a rendered diff gets syntax highlighting,
// combining a site-wide default with a per-user opt-out.
type HighlightPolicy struct {
	SiteDefault bool
}

// Enabled reports whether highlighting should run for this viewer: only
// when both the site default and the user's preference allow it. A user
// who has disabled it always wins over the site default. Profile's zero
// value reads as "disabled"; there is no separate "no preference" state
// that falls back to the site default.
func (p HighlightPolicy) Enabled(profile Profile) bool {
	return p.SiteDefault && profile.SyntaxHighlightingEnabled
}

// Service glues the blob store, the diffcore pipeline, and a set of
// FileDiff records together into the operations an HTTP layer needs: build
// once, then repeatedly page through the result.
type Service struct {
	Store storage.Storage
	Cfg   diffcore.Config
}

// LoadAndDiff fetches the archive stored at id, expects it to contain
// exactly two files (the original and the patched version of one path),
// and returns the resulting FileDiff.
func (s *Service) LoadAndDiff(ctx context.Context, id string, origName, newName string) (FileDiff, error) {
	data, err := s.Store.Get(ctx, id)
	if err != nil {
		return FileDiff{}, err
	}
	files, err := DecodeArchive(data)
	if err != nil {
		return FileDiff{}, err
	}
	if len(files) != 2 {
		return FileDiff{}, fmt.Errorf("reviewdiff: expected 2 files in archive %q, got %d", id, len(files))
	}
	return BuildFileDiff([]byte(files[0].Content), []byte(files[1].Content), files[0].Name, files[1].Name, s.Cfg)
}

// Page returns the chunks of fd overlapping the given virtual-line window.
// See diffcore.GetChunksInRange for the windowing semantics.
func (s *Service) Page(fd FileDiff, firstLine, numLines int) diffcore.Page {
	return diffcore.GetChunksInRange(fd.Chunks, firstLine, numLines)
}
