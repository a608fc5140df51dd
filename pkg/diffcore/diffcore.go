package diffcore

import "path/filepath"

// Generate runs the full pipeline: normalize both buffers, convert to
// UTF-8, split into lines, diff, post-process (whitespace + move
// detection), and chunk/collapse. filename is used only to pick header and
// syntax-highlighting rules; it is never read from disk.
func Generate(oldData, newData []byte, filename string, cfg Config) ([]Chunk, error) {
	oldLines, newLines, err := prepareLines(oldData, newData, cfg)
	if err != nil {
		return nil, err
	}

	ignoreSpace := !matchesAnyPattern(filename, cfg.IncludeSpacePatterns)

	differ := NewLineDiffer(oldLines, newLines, ignoreSpace, cfg.CompatVersion)
	ops, err := differ.Opcodes()
	if err != nil {
		return nil, err
	}

	annotated := AnnotateOpcodes(ops, oldLines, newLines, differ.lineEqual)
	return BuildChunks(annotated, oldLines, newLines, filename, cfg), nil
}

func prepareLines(oldData, newData []byte, cfg Config) (oldLines, newLines []string, err error) {
	old, err := ToUTF8(NormalizeNewlines(oldData), cfg.Encoding)
	if err != nil {
		return nil, nil, err
	}
	updated, err := ToUTF8(NormalizeNewlines(newData), cfg.Encoding)
	if err != nil {
		return nil, nil, err
	}
	return SplitLines(EnsureTrailingNewline(old)), SplitLines(EnsureTrailingNewline(updated)), nil
}

func matchesAnyPattern(filename string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, filename); ok {
			return true
		}
		if ok, _ := filepath.Match(p, filepath.Base(filename)); ok {
			return true
		}
	}
	return false
}
