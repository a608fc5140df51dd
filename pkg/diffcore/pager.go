package diffcore

// Page is a windowed view over a chunk list: the chunks whose lines overlap
// [FirstLine, FirstLine+NumLines), plus the header context that was in
// effect immediately before the window started. Each returned chunk
// has its LeftHeaders/RightHeaders stripped, since a paged view only cares
// about the single enclosing header, not every header the chunk contains.
type Page struct {
	Chunks      []Chunk
	LeftHeader  *Header
	RightHeader *Header
}

// GetChunksInRange returns the sub-sequence of chunks overlapping the
// requested virtual-line window, carrying forward the most recent header
// seen on each side so a window that starts mid-function still knows what
// function it's in.
func GetChunksInRange(chunks []Chunk, firstLine, numLines int) Page {
	lastLine := firstLine + numLines

	var page Page
	var lastLeft, lastRight *Header

	for _, c := range chunks {
		if c.Meta.Headers != nil {
			if c.Meta.Headers.Left != nil {
				lastLeft = c.Meta.Headers.Left
			}
			if c.Meta.Headers.Right != nil {
				lastRight = c.Meta.Headers.Right
			}
		}
		for _, h := range c.Meta.LeftHeaders {
			hh := h
			lastLeft = &hh
		}
		for _, h := range c.Meta.RightHeaders {
			hh := h
			lastRight = &hh
		}

		if len(c.Lines) == 0 {
			continue
		}
		first := c.Lines[0].VLine
		last := c.Lines[len(c.Lines)-1].VLine
		if last < firstLine || first >= lastLine {
			continue
		}

		stripped := c
		stripped.Meta.LeftHeaders = nil
		stripped.Meta.RightHeaders = nil

		var windowed []RenderedLine
		for _, l := range c.Lines {
			if l.VLine >= firstLine && l.VLine < lastLine {
				windowed = append(windowed, l)
			}
		}
		stripped.Lines = windowed

		if page.LeftHeader == nil {
			page.LeftHeader = lastLeft
		}
		if page.RightHeader == nil {
			page.RightHeader = lastRight
		}

		page.Chunks = append(page.Chunks, stripped)
	}

	if page.LeftHeader == nil {
		page.LeftHeader = lastLeft
	}
	if page.RightHeader == nil {
		page.RightHeader = lastRight
	}

	return page
}
