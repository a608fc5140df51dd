package diffcore

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// NormalizeNewlines collapses "\r\n" and "\r" to "\n". A lone trailing "\r"
// (Perforce's way of saying "no trailing newline") is stripped outright
// rather than converted, so that a later "add trailing newline for diff
// purposes" step doesn't invent one that was never there.
//
// It is idempotent: NormalizeNewlines(NormalizeNewlines(x)) == NormalizeNewlines(x).
func NormalizeNewlines(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	if data[len(data)-1] == '\r' {
		data = data[:len(data)-1]
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == '\r' {
			out = append(out, '\n')
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

// ToUTF8 returns data re-encoded as UTF-8. It first tries strict UTF-8
// decoding; on failure it tries each comma-separated encoding name in
// encList in order (resolved via the IANA name table); if none succeed it
// falls back to lossy UTF-8-with-replacement decoding, which by
// construction cannot itself fail.
//
// ToUTF8(x, any) == x when x is already valid UTF-8.
func ToUTF8(data []byte, encList string) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}

	var attempted []string
	for _, name := range strings.Split(encList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		attempted = append(attempted, name)

		enc, err := htmlindex.Get(name)
		if err != nil {
			continue
		}
		out, err := decodeStrict(enc, data)
		if err == nil {
			return out, nil
		}
	}

	// Final resort: decode as UTF-8, replacing invalid sequences. This
	// never fails — it always produces *some* valid UTF-8 — so
	// EncodingError is, in practice, unreachable; it's kept as a typed
	// error for callers in case that ever changes.
	return decodeReplacing(data), nil
}

func decodeStrict(enc encoding.Encoding, data []byte) ([]byte, error) {
	dec := enc.NewDecoder()
	return dec.Bytes(data)
}

func decodeReplacing(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		buf.WriteRune(r)
		data = data[size:]
	}
	return buf.Bytes()
}

// EnsureTrailingNewline appends a "\n" if data is non-empty and does not
// already end with one. This is the "add a missing final newline only for
// diff purposes" step: it never mutates what gets displayed, only what
// gets diffed.
func EnsureTrailingNewline(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	if data[len(data)-1] == '\n' {
		return data
	}
	out := make([]byte, len(data)+1)
	copy(out, data)
	out[len(data)] = '\n'
	return out
}

// SplitLines splits normalized, newline-terminated text into lines without
// their terminators. A trailing empty element produced by the final "\n" is
// dropped, and an empty buffer yields zero lines.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
