package reviewdiff

import (
	"path"
	"sort"
	"strings"

	"github.com/sidediff/sidediff/pkg/diffcore"
)

// FileDiff is one file's worth of diff metadata plus its rendered chunks,
// the record a whole-diffset view iterates over.
type FileDiff struct {
	DepotFilename string
	DestFilename  string
	Basename      string
	Basepath      string
	Revision      string
	DestRevision  string

	NewFile bool
	Deleted bool
	Binary  bool
	Moved   bool

	Chunks              []diffcore.Chunk
	NumChanges          int
	ChangedChunkIndexes []int
	WhitespaceOnly      bool

	// Index is this file's position in a stable, sorted FileDiff list; set
	// by SortFiles, not by BuildFileDiff.
	Index int
}

// BuildFileDiff runs the diffcore pipeline for one file pair and wraps the
// result into a FileDiff record. origPath becomes DepotFilename; newPath
// gives DestFilename, Basename and Basepath. The diff is always generated
// keyed off newPath's extension (matching what to highlight/header-scan
// against).
func BuildFileDiff(origData, newData []byte, origPath, newPath string, cfg diffcore.Config) (FileDiff, error) {
	fd := FileDiff{
		DepotFilename: origPath,
		DestFilename:  newPath,
		Basename:      path.Base(newPath),
		Basepath:      path.Dir(newPath),
		NewFile:       len(origData) == 0,
		Deleted:       len(newData) == 0,
	}

	if isBinary(origData) || isBinary(newData) {
		fd.Binary = true
		return fd, nil
	}

	chunks, err := diffcore.Generate(origData, newData, newPath, cfg)
	if err != nil {
		return FileDiff{}, err
	}
	fd.Chunks = chunks

	allWhitespace := true
	for i, c := range chunks {
		if c.Change == diffcore.TagEqual {
			continue
		}
		fd.NumChanges++
		fd.ChangedChunkIndexes = append(fd.ChangedChunkIndexes, i)
		if !c.Meta.WhitespaceChunk {
			allWhitespace = false
		}
	}
	fd.WhitespaceOnly = allWhitespace && fd.NumChanges > 0

	return fd, nil
}

// isBinary applies the same crude heuristic diff tools have used for
// decades: a NUL byte anywhere in the first few KB means "don't diff this
// as text".
func isBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	for i := 0; i < n; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}

// SortFiles orders a file list the way get_diff_files's cmp_file does:
// basepath ascending, then the basename's stem ascending, then its
// extension *descending* (so e.g. "foo.h" sorts before "foo.c" within the
// same stem — headers next to implementations, the odd way around). It
// assigns Index in the resulting order.
func SortFiles(files []FileDiff) {
	sort.SliceStable(files, func(a, b int) bool {
		fa, fb := files[a], files[b]
		if fa.Basepath != fb.Basepath {
			return fa.Basepath < fb.Basepath
		}
		stemA, extA := splitStem(fa.Basename)
		stemB, extB := splitStem(fb.Basename)
		if stemA != stemB {
			return stemA < stemB
		}
		return extA > extB
	})
	for i := range files {
		files[i].Index = i
	}
}

func splitStem(basename string) (stem, ext string) {
	ext = path.Ext(basename)
	stem = strings.TrimSuffix(basename, ext)
	return stem, ext
}
