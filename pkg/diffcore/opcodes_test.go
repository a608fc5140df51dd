package diffcore

import "testing"

func lineEqExact(a, b []string) func(i, j int) bool {
	return func(i, j int) bool { return a[i] == b[j] }
}

func TestAnnotateWhitespaceOnlyReplace(t *testing.T) {
	old := []string{"foo(a, b)"}
	newL := []string{"foo(a,  b)"}
	ops := []Opcode{{Tag: TagReplace, I1: 0, I2: 1, J1: 0, J2: 1}}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))
	if !annotated[0].Meta.WhitespaceChunk {
		t.Fatalf("expected whitespace-only chunk, got %+v", annotated[0].Meta)
	}
	if len(annotated[0].Meta.WhitespaceLines) != 1 {
		t.Errorf("expected 1 whitespace line pair, got %+v", annotated[0].Meta.WhitespaceLines)
	}
}

func TestAnnotateWhitespaceNotSquareLeftUnannotated(t *testing.T) {
	old := []string{"a", "b", "c"}
	newL := []string{"a  b  c", "d"}
	ops := []Opcode{{Tag: TagReplace, I1: 0, I2: 3, J1: 0, J2: 2}}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))
	if annotated[0].Meta.WhitespaceChunk {
		t.Error("expected no whitespace annotation for a resizing replace")
	}
}

func TestAnnotateWhitespaceRealChangeNotFlagged(t *testing.T) {
	old := []string{"foo(a, b)"}
	newL := []string{"foo(a, c)"}
	ops := []Opcode{{Tag: TagReplace, I1: 0, I2: 1, J1: 0, J2: 1}}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))
	if annotated[0].Meta.WhitespaceChunk {
		t.Error("expected no whitespace annotation for a real content change")
	}
}

func TestIsValidMoveRange(t *testing.T) {
	if isValidMoveRange([]string{";"}) {
		t.Error("pure punctuation should not be a valid move range")
	}
	if isValidMoveRange([]string{"x"}) {
		t.Error("a 1-char line should not be a valid move range")
	}
	if !isValidMoveRange([]string{"func Foo() {"}) {
		t.Error("expected a real code line to be a valid move range")
	}
}

func TestAnnotateMovesDetectsMovedBlock(t *testing.T) {
	// "helper code" deleted from the top and reinserted, unchanged, further
	// down -- a textbook move.
	old := []string{"func Helper() {", "    return 42", "}", "func Main() {}"}
	newL := []string{"func Main() {}", "func Helper() {", "    return 42", "}"}

	ops := []Opcode{
		{Tag: TagDelete, I1: 0, I2: 3, J1: 0, J2: 0},
		{Tag: TagEqual, I1: 3, I2: 4, J1: 0, J2: 1},
		{Tag: TagInsert, I1: 4, I2: 4, J1: 1, J2: 4},
	}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))

	delOp := annotated[0]
	if len(delOp.Meta.Moved) == 0 {
		t.Fatalf("expected delete opcode to carry move annotations, got %+v", delOp.Meta)
	}
	insOp := annotated[2]
	if len(insOp.Meta.Moved) == 0 {
		t.Fatalf("expected insert opcode to carry move annotations, got %+v", insOp.Meta)
	}
}

func TestAnnotateMovesIgnoresReplaceOpcodes(t *testing.T) {
	// Two unrelated replace chunks whose text happens to swap places --
	// this must never be mistaken for a move, since only delete/insert
	// opcodes are move candidates.
	old := []string{"func Alpha() {}", "func Beta() {}"}
	newL := []string{"func Beta() {}", "func Alpha() {}"}
	ops := []Opcode{
		{Tag: TagReplace, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: TagReplace, I1: 1, I2: 2, J1: 1, J2: 2},
	}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))
	for _, op := range annotated {
		if len(op.Meta.Moved) != 0 {
			t.Errorf("replace opcodes must not produce move annotations, got %+v", op.Meta)
		}
	}
}

func TestAnnotateMovesIgnoresShortLines(t *testing.T) {
	old := []string{"}", ";", "x"}
	newL := []string{"p", "}", ";", "x"}
	ops := []Opcode{
		{Tag: TagDelete, I1: 0, I2: 3, J1: 0, J2: 0},
		{Tag: TagInsert, I1: 3, I2: 3, J1: 1, J2: 4},
	}
	annotated := AnnotateOpcodes(ops, old, newL, lineEqExact(old, newL))
	for _, op := range annotated {
		if len(op.Meta.Moved) != 0 {
			t.Errorf("expected no move annotation for short/punctuation-only lines, got %+v", op.Meta)
		}
	}
}
