package diffcore

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// regionMinRatio is the SequenceMatcher.Ratio() floor below which two lines
// are considered too dissimilar to bother marking intra-line regions for;
// below it the two lines are rendered as a plain delete/insert pair instead.
const regionMinRatio = 0.6

// backExtendMax bounds how far GetLineChangedRegions will pull a short
// equal run backward into the changed region that follows it, so that
// changes separated by only a character or two are marked as one span
// (e.g. "abcd1e2" -> "abcd9e8" marks "9e8" rather than "9" and "8"). A preceding
// equal run strictly shorter than this always gets pulled in, regardless of
// whether it is the very first opcode; a run of backExtendMax or more (as
// "foo" in "foobar" -> "foo_bar") is not.
const backExtendMax = 3

// GetLineChangedRegions computes the intra-line changed regions between one
// deleted line and one inserted line of a replace opcode. It returns
// (nil, nil) when either line is empty or the two lines are too dissimilar
// (ratio below regionMinRatio) to be worth annotating.
func GetLineChangedRegions(oldLine, newLine string) (oldRegions, newRegions []Region) {
	if oldLine == "" || newLine == "" {
		return nil, nil
	}

	oldChars := splitChars(oldLine)
	newChars := splitChars(newLine)

	sm := difflib.NewMatcher(oldChars, newChars)
	if sm.Ratio() < regionMinRatio {
		return nil, nil
	}

	opcodes := sm.GetOpCodes()

	var oldOut, newOut []Region
	for idx, op := range opcodes {
		if op.Tag == 'e' {
			continue
		}
		i1, i2, j1, j2 := op.I1, op.I2, op.J1, op.J2

		// If the equal run immediately preceding this change is short,
		// pull the region boundary back across it so it merges with the
		// region before that run.
		if idx > 0 && opcodes[idx-1].Tag == 'e' {
			prev := opcodes[idx-1]
			if prev.I2-prev.I1 < backExtendMax {
				i1, j1 = prev.I1, prev.J1
			}
		}

		if i1 < i2 {
			oldOut = appendMergedRegion(oldOut, Region{Start: i1, End: i2})
		}
		if j1 < j2 {
			newOut = appendMergedRegion(newOut, Region{Start: j1, End: j2})
		}
	}

	oldOut = runesToBytes(oldOut, oldLine)
	newOut = runesToBytes(newOut, newLine)

	oldOut = dropWhitespaceOnly(oldOut, oldLine)
	newOut = dropWhitespaceOnly(newOut, newLine)

	return oldOut, newOut
}

// runesToBytes converts regions expressed as rune-slice indices (the unit
// the matcher above works in) into the byte offsets Region documents.
func runesToBytes(regions []Region, line string) []Region {
	if len(regions) == 0 {
		return regions
	}
	offsets := make([]int, 0, len(line)+1)
	offsets = append(offsets, 0)
	for _, r := range line {
		offsets = append(offsets, offsets[len(offsets)-1]+len(string(r)))
	}
	out := make([]Region, len(regions))
	for i, r := range regions {
		out[i] = Region{Start: offsets[r.Start], End: offsets[r.End]}
	}
	return out
}

// splitChars splits a string into a []string of single runes, the unit
// go-difflib's SequenceMatcher needs to diff within a line.
func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func appendMergedRegion(regions []Region, r Region) []Region {
	if len(regions) > 0 {
		last := &regions[len(regions)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			return regions
		}
	}
	return append(regions, r)
}

// dropWhitespaceOnly removes any region whose marked span is entirely
// whitespace, matching the rule that a region must mark an actual content
// change, not just re-flowed spacing.
func dropWhitespaceOnly(regions []Region, line string) []Region {
	out := regions[:0]
	for _, r := range regions {
		if strings.TrimSpace(line[r.Start:r.End]) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
