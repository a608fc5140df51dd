package diffcore

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightDisabled reports whether syntax highlighting must be skipped for
// this pair of files, per a four-gate check: the global switch is
// off, either side's line count exceeds the configured threshold, either
// side's byte length exceeds StyledMaxBytes, or any single line exceeds
// StyledMaxLineLen. The line-length check short-circuits on the first
// offending line it finds.
func highlightDisabled(cfg Config, oldLines, newLines []string) bool {
	if !cfg.SyntaxHighlighting {
		return true
	}
	if cfg.HighlightingThreshold > 0 {
		if len(oldLines) > cfg.HighlightingThreshold || len(newLines) > cfg.HighlightingThreshold {
			return true
		}
	}
	if totalBytes(oldLines) > StyledMaxBytes || totalBytes(newLines) > StyledMaxBytes {
		return true
	}
	for _, l := range oldLines {
		if len(l) > StyledMaxLineLen {
			return true
		}
	}
	for _, l := range newLines {
		if len(l) > StyledMaxLineLen {
			return true
		}
	}
	return false
}

func totalBytes(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	return n
}

// Highlighter renders a file's lines to one HTML-escaped markup string per
// line, using chroma for lexical analysis keyed off the filename. It falls
// back to plain HTML-escaped text — never an error — whenever highlighting
// is disabled, no lexer is found, or chroma itself fails; highlighting is a
// rendering nicety, never a hard dependency for producing a diff.
type Highlighter struct {
	markup []string
}

// NewHighlighter tokenizes lines (the full file, not just the changed
// portion, so multi-line constructs like block comments stay correctly
// colored) and renders each line to markup. filename drives chroma's lexer
// selection; disabled forces the plain-escape fallback for every line.
func NewHighlighter(filename string, lines []string, disabled bool) *Highlighter {
	if disabled || len(lines) == 0 {
		return &Highlighter{markup: escapeLines(lines)}
	}

	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	source := strings.Join(lines, "\n")
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return &Highlighter{markup: escapeLines(lines)}
	}

	rendered, err := renderPerLine(iterator, len(lines))
	if err != nil {
		return &Highlighter{markup: escapeLines(lines)}
	}
	return &Highlighter{markup: rendered}
}

// Markup returns the rendered markup for 0-based line index i, or an
// HTML-escaped empty string if i is out of range.
func (h *Highlighter) Markup(i int) string {
	if i < 0 || i >= len(h.markup) {
		return ""
	}
	return h.markup[i]
}

func escapeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = html.EscapeString(l)
	}
	return out
}

// renderPerLine formats chroma's token stream to HTML, one <span> wrapper
// per style class, then splits the result back into per-source-line markup
// by counting embedded newlines, since chroma's HTML formatter renders a
// whole token stream as one block.
func renderPerLine(iterator chroma.Iterator, wantLines int) ([]string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	style := styles.Get("monokailight")
	if style == nil {
		style = styles.Fallback
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return nil, err
	}

	lines := strings.Split(buf.String(), "\n")
	// chroma's formatter emits a trailing blank line for the final "\n" in
	// source; trim it so line counts line up with the input.
	if len(lines) > wantLines && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) < wantLines {
		lines = append(lines, "")
	}
	return lines[:wantLines], nil
}
