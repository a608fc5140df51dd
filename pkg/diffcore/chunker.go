package diffcore

// BuildChunks builds the rendered, collapse-aware chunk list from annotated
// opcodes. filename drives both the header scanner and the highlighter;
// cfg controls highlighting gates and the collapse threshold.
func BuildChunks(ops []AnnotatedOpcode, oldLines, newLines []string, filename string, cfg Config) []Chunk {
	disabled := highlightDisabled(cfg, oldLines, newLines)
	oldHL := NewHighlighter(filename, oldLines, disabled)
	newHL := NewHighlighter(filename, newLines, disabled)
	oldHdr := NewHeaderScanner(filename, oldLines)
	newHdr := NewHeaderScanner(filename, newLines)

	var chunks []Chunk
	vline := 1
	threshold := cfg.CollapseThreshold()

	for idx, aop := range ops {
		op := aop.Opcode
		numLines := op.I2 - op.I1
		if n := op.J2 - op.J1; n > numLines {
			numLines = n
		}

		if op.Tag == TagEqual && numLines > threshold {
			isFirst := idx == 0
			isLast := idx == len(ops)-1
			chunks = append(chunks, collapseEqual(op, oldLines, newLines, oldHL, newHL, oldHdr, newHdr, cfg, &vline, isFirst, isLast)...)
			continue
		}

		chunks = append(chunks, renderChunk(len(chunks), op, aop.Meta, oldLines, newLines, oldHL, newHL, &vline))
	}

	attachHeaders(chunks, oldHdr, newHdr)
	return chunks
}

// collapseEqual splits a long equal run into up to three pieces: a leading
// visible slice of ContextNumLines kept for trailing context of the
// previous change, a collapsed middle, and a trailing visible slice kept as
// leading context for the next change. A run that opens the file has no
// leading visible slice, and a run that closes the file has no trailing
// one; the collapsed piece is always present.
func collapseEqual(op Opcode, oldLines, newLines []string, oldHL, newHL *Highlighter, oldHdr, newHdr *HeaderScanner, cfg Config, vline *int, isFirst, isLast bool) []Chunk {
	ctx := cfg.ContextNumLines
	n := op.I2 - op.I1
	var out []Chunk

	switch {
	case isFirst:
		// The file-start case always wins, even when this same run also
		// closes the file: collapse everything but the trailing ctx lines,
		// which stay visible as leading context for whatever follows.
		if n > ctx {
			collapsedOp := Opcode{Tag: TagEqual, I1: op.I1, I2: op.I2 - ctx, J1: op.J1, J2: op.J2 - ctx}
			out = append(out, collapsedChunk(collapsedOp, oldLines, newLines, oldHL, newHL, oldHdr, newHdr, vline))
			visOp := Opcode{Tag: TagEqual, I1: op.I2 - ctx, I2: op.I2, J1: op.J2 - ctx, J2: op.J2}
			out = append(out, renderEqualChunk(visOp, oldLines, newLines, oldHL, newHL, vline))
		} else {
			out = append(out, renderEqualChunk(op, oldLines, newLines, oldHL, newHL, vline))
		}
	case isLast:
		if n > ctx {
			visOp := Opcode{Tag: TagEqual, I1: op.I1, I2: op.I1 + ctx, J1: op.J1, J2: op.J1 + ctx}
			out = append(out, renderEqualChunk(visOp, oldLines, newLines, oldHL, newHL, vline))
			collapsedOp := Opcode{Tag: TagEqual, I1: op.I1 + ctx, I2: op.I2, J1: op.J1 + ctx, J2: op.J2}
			out = append(out, collapsedChunk(collapsedOp, oldLines, newLines, oldHL, newHL, oldHdr, newHdr, vline))
		} else {
			out = append(out, renderEqualChunk(op, oldLines, newLines, oldHL, newHL, vline))
		}
	default:
		// Interior run: keep ctx lines of leading and trailing context
		// visible, collapse the middle.
		leadOp := Opcode{Tag: TagEqual, I1: op.I1, I2: op.I1 + ctx, J1: op.J1, J2: op.J1 + ctx}
		midOp := Opcode{Tag: TagEqual, I1: op.I1 + ctx, I2: op.I2 - ctx, J1: op.J1 + ctx, J2: op.J2 - ctx}
		trailOp := Opcode{Tag: TagEqual, I1: op.I2 - ctx, I2: op.I2, J1: op.J2 - ctx, J2: op.J2}
		out = append(out, renderEqualChunk(leadOp, oldLines, newLines, oldHL, newHL, vline))
		out = append(out, collapsedChunk(midOp, oldLines, newLines, oldHL, newHL, oldHdr, newHdr, vline))
		out = append(out, renderEqualChunk(trailOp, oldLines, newLines, oldHL, newHL, vline))
	}
	return out
}

// collapsedChunk renders op the same way renderChunk does — full Lines,
// vline advanced for every line — just marked Collapsable so pagination and
// the UI can treat it as a folded region without losing the ability to
// reconstruct the original range exactly.
func collapsedChunk(op Opcode, oldLines, newLines []string, oldHL, newHL *Highlighter, oldHdr, newHdr *HeaderScanner, vline *int) Chunk {
	var pair HeaderPair
	pair.Left = oldHdr.HeaderBefore(op.I1)
	pair.Right = newHdr.HeaderBefore(op.J1)
	c := renderChunk(0, op, Meta{Headers: &pair}, oldLines, newLines, oldHL, newHL, vline)
	c.Collapsable = true
	return c
}

func renderEqualChunk(op Opcode, oldLines, newLines []string, oldHL, newHL *Highlighter, vline *int) Chunk {
	return renderChunk(0, op, Meta{}, oldLines, newLines, oldHL, newHL, vline)
}

// renderChunk builds the per-line rendering for one opcode, consulting the
// intra-line region differ only for replace opcodes where both sides
// are present and within the line-length budget used for per-line diffing.
func renderChunk(index int, op Opcode, meta Meta, oldLines, newLines []string, oldHL, newHL *Highlighter, vline *int) Chunk {
	n := op.I2 - op.I1
	if m := op.J2 - op.J1; m > n {
		n = m
	}

	lines := make([]RenderedLine, 0, n)
	for k := 0; k < n; k++ {
		var rl RenderedLine
		rl.VLine = *vline
		*vline++

		hasOld := op.I1+k < op.I2
		hasNew := op.J1+k < op.J2

		if hasOld {
			rl.OrigLineno = op.I1 + k + 1
			rl.OrigMarkup = oldHL.Markup(op.I1 + k)
		}
		if hasNew {
			rl.NewLineno = op.J1 + k + 1
			rl.NewMarkup = newHL.Markup(op.J1 + k)
		}

		if op.Tag == TagReplace && hasOld && hasNew {
			old := oldLines[op.I1+k]
			updated := newLines[op.J1+k]
			if len(old) <= StyledMaxLineLen && len(updated) <= StyledMaxLineLen {
				oldRegions, newRegions := GetLineChangedRegions(old, updated)
				rl.OrigRegion = oldRegions
				rl.NewRegion = newRegions
			}
		}

		if meta.WhitespaceChunk {
			for _, p := range meta.WhitespaceLines {
				if p.Orig == rl.OrigLineno && p.New == rl.NewLineno {
					rl.WhitespaceOnly = true
					break
				}
			}
		}
		if meta.Moved != nil {
			if to, ok := meta.Moved[rl.OrigLineno]; ok && rl.OrigLineno != 0 {
				rl.MovedTo = to
			} else if to, ok := meta.Moved[rl.NewLineno]; ok && rl.NewLineno != 0 {
				rl.MovedTo = to
			}
		}

		lines = append(lines, rl)
	}

	change := op.Tag
	if meta.WhitespaceChunk {
		change = TagReplace
	}

	return Chunk{
		Index:  index,
		Change: change,
		Lines:  lines,
		Meta:   meta,
	}
}

// attachHeaders fills in each rendered (non-collapsed) chunk's Meta with the
// headers found within its own line range, a denormalized convenience the
// pager consumes directly instead of re-scanning.
func attachHeaders(chunks []Chunk, oldHdr, newHdr *HeaderScanner) {
	for i := range chunks {
		c := &chunks[i]
		if c.Collapsable || len(c.Lines) == 0 {
			continue
		}
		first, last := c.Lines[0], c.Lines[len(c.Lines)-1]
		if first.OrigLineno > 0 && last.OrigLineno > 0 {
			c.Meta.LeftHeaders = oldHdr.HeadersInRange(first.OrigLineno-1, last.OrigLineno)
		}
		if first.NewLineno > 0 && last.NewLineno > 0 {
			c.Meta.RightHeaders = newHdr.HeadersInRange(first.NewLineno-1, last.NewLineno)
		}
	}
}
