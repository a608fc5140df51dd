package diffcore

import "sort"

// legacyOpcodes implements the compat-version-0 line differ: a patience-diff
// matcher, kept so diffs computed and stored before the Myers-style matcher
// (compat version 1) became the default can still be rendered identically.
// It anchors on lines that occur exactly once on both sides of a range,
// recurses between anchors, and falls back to the Myers matcher (exact
// equality only — the legacy matcher predates whitespace-insensitive
// comparison) for any stretch with no unique anchor.
func legacyOpcodes(a, b []string) []Opcode {
	raw := patienceRange(a, b, 0, len(a), 0, len(b))
	return expandAndCoalesce(raw)
}

type anchor struct {
	i, j int
}

func patienceRange(a, b []string, aLo, aHi, bLo, bHi int) []Opcode {
	switch {
	case aLo == aHi && bLo == bHi:
		return nil
	case aLo == aHi:
		return []Opcode{{Tag: TagInsert, I1: aLo, I2: aLo, J1: bLo, J2: bHi}}
	case bLo == bHi:
		return []Opcode{{Tag: TagDelete, I1: aLo, I2: aHi, J1: bLo, J2: bLo}}
	}

	anchors := uniqueCommonAnchors(a, b, aLo, aHi, bLo, bHi)
	if len(anchors) == 0 {
		return myersOpcodesRange(a, b, aLo, aHi, bLo, bHi)
	}

	var out []Opcode
	pa, pb := aLo, bLo
	for _, an := range anchors {
		out = append(out, patienceRange(a, b, pa, an.i, pb, an.j)...)
		out = append(out, Opcode{Tag: TagEqual, I1: an.i, I2: an.i + 1, J1: an.j, J2: an.j + 1})
		pa, pb = an.i+1, an.j+1
	}
	out = append(out, patienceRange(a, b, pa, aHi, pb, bHi)...)
	return out
}

// uniqueCommonAnchors finds lines that occur exactly once in a[aLo:aHi] and
// exactly once in b[bLo:bHi] and have equal text, then returns the longest
// subsequence of such pairs that is strictly increasing in both coordinates
// (patience sorting), which is the set of anchors a recursive diff can trust.
func uniqueCommonAnchors(a, b []string, aLo, aHi, bLo, bHi int) []anchor {
	countA := make(map[string]int, aHi-aLo)
	for i := aLo; i < aHi; i++ {
		countA[a[i]]++
	}
	countB := make(map[string]int, bHi-bLo)
	for j := bLo; j < bHi; j++ {
		countB[b[j]]++
	}

	bIndexOf := make(map[string]int)
	for j := bLo; j < bHi; j++ {
		if countB[b[j]] == 1 {
			bIndexOf[b[j]] = j
		}
	}

	var candidates []anchor
	for i := aLo; i < aHi; i++ {
		if countA[a[i]] != 1 {
			continue
		}
		if j, ok := bIndexOf[a[i]]; ok {
			candidates = append(candidates, anchor{i: i, j: j})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// candidates is already increasing in i; find the longest strictly
	// increasing-in-j subsequence via patience sorting with predecessor
	// tracking, same idea as a classic longest-increasing-subsequence.
	piles := make([]int, 0, len(candidates)) // indexes into candidates, pile tops
	pred := make([]int, len(candidates))
	for idx := range pred {
		pred[idx] = -1
	}

	for idx, c := range candidates {
		lo, hi := 0, len(piles)
		for lo < hi {
			mid := (lo + hi) / 2
			if candidates[piles[mid]].j < c.j {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			pred[idx] = piles[lo-1]
		}
		if lo == len(piles) {
			piles = append(piles, idx)
		} else {
			piles[lo] = idx
		}
	}

	if len(piles) == 0 {
		return nil
	}
	seq := make([]anchor, 0, len(piles))
	for at := piles[len(piles)-1]; at != -1; at = pred[at] {
		seq = append(seq, candidates[at])
	}
	sort.Slice(seq, func(i, j int) bool { return seq[i].i < seq[j].i })
	return seq
}

func myersOpcodesRange(a, b []string, aLo, aHi, bLo, bHi int) []Opcode {
	sub := myersOpcodes(a[aLo:aHi], b[bLo:bHi], func(i, j int) bool {
		return a[aLo+i] == b[bLo+j]
	})
	out := make([]Opcode, len(sub))
	for i, op := range sub {
		out[i] = Opcode{
			Tag: op.Tag,
			I1:  op.I1 + aLo, I2: op.I2 + aLo,
			J1: op.J1 + bLo, J2: op.J2 + bLo,
		}
	}
	return out
}

// expandAndCoalesce re-flattens an opcode list built by recursive anchoring
// (which tends to produce many length-one equal opcodes and adjacent
// delete/insert pairs that belong in a single replace) back into an edit
// stream and re-coalesces it, giving the same minimal, gap-free opcode list
// the Myers path produces.
func expandAndCoalesce(ops []Opcode) []Opcode {
	var edits []edit
	for _, op := range ops {
		switch op.Tag {
		case TagEqual:
			for n := op.I2 - op.I1; n > 0; n-- {
				edits = append(edits, edit{kind: editEqual})
			}
		case TagDelete:
			for n := op.I2 - op.I1; n > 0; n-- {
				edits = append(edits, edit{kind: editDelete})
			}
		case TagInsert:
			for n := op.J2 - op.J1; n > 0; n-- {
				edits = append(edits, edit{kind: editInsert})
			}
		case TagReplace:
			for n := op.I2 - op.I1; n > 0; n-- {
				edits = append(edits, edit{kind: editDelete})
			}
			for n := op.J2 - op.J1; n > 0; n-- {
				edits = append(edits, edit{kind: editInsert})
			}
		}
	}
	return coalesceEdits(edits)
}
