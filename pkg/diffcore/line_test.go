package diffcore

import (
	"regexp"
	"testing"
)

func opcodeStr(ops []Opcode) []Tag {
	tags := make([]Tag, len(ops))
	for i, o := range ops {
		tags[i] = o.Tag
	}
	return tags
}

func TestLineDifferBasicDeleteAndInsert(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := []string{"a", "d", "e"}
	d := NewLineDiffer(a, b, false, 1)
	ops, err := d.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 4 {
		t.Fatalf("got %d opcodes: %+v", len(ops), ops)
	}
	if ops[0].Tag != TagEqual || ops[0].I1 != 0 || ops[0].I2 != 1 {
		t.Errorf("opcode 0: %+v", ops[0])
	}
	if ops[1].Tag != TagDelete || ops[1].I1 != 1 || ops[1].I2 != 3 {
		t.Errorf("opcode 1: %+v", ops[1])
	}
	if ops[2].Tag != TagEqual || ops[2].I1 != 3 || ops[2].I2 != 4 {
		t.Errorf("opcode 2: %+v", ops[2])
	}
	if ops[3].Tag != TagInsert || ops[3].J1 != 2 || ops[3].J2 != 3 {
		t.Errorf("opcode 3: %+v", ops[3])
	}
}

func TestLineDifferEmptyInputs(t *testing.T) {
	d := NewLineDiffer(nil, nil, false, 1)
	ops, err := d.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Tag != TagEqual {
		t.Fatalf("expected single empty equal opcode, got %+v", ops)
	}
}

func TestLineDifferAllInsert(t *testing.T) {
	d := NewLineDiffer(nil, []string{"a", "b"}, false, 1)
	ops, err := d.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Tag != TagInsert || ops[0].J2 != 2 {
		t.Fatalf("got %+v", ops)
	}
}

func TestLineDifferIgnoreSpace(t *testing.T) {
	a := []string{"foo  bar"}
	b := []string{"foo bar"}

	strict := NewLineDiffer(a, b, false, 1)
	ops, err := strict.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	if ops[0].Tag != TagReplace {
		t.Errorf("strict comparison: expected replace, got %+v", ops)
	}

	lenient := NewLineDiffer(a, b, true, 1)
	ops, err = lenient.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	if ops[0].Tag != TagEqual {
		t.Errorf("whitespace-insensitive comparison: expected equal, got %+v", ops)
	}
}

func TestLineDifferInvalidCompatVersion(t *testing.T) {
	d := NewLineDiffer([]string{"a"}, []string{"a"}, false, 7)
	_, err := d.Opcodes()
	if err == nil {
		t.Fatal("expected error for unsupported compat version")
	}
	var compatErr *DiffCompatError
	if !asCompatError(err, &compatErr) {
		t.Fatalf("expected *DiffCompatError, got %T: %v", err, err)
	}
}

func asCompatError(err error, target **DiffCompatError) bool {
	ce, ok := err.(*DiffCompatError)
	if ok {
		*target = ce
	}
	return ok
}

func TestGetInterestingLines(t *testing.T) {
	a := []string{"func A() {}", "x := 1", "func B() {}"}
	b := []string{"func A() {}", "func C() {}"}
	d := NewLineDiffer(a, b, false, 1)
	d.AddInterestingLineRegex("func", regexp.MustCompile(`^func `))

	old := d.GetInterestingLines("func", false)
	if len(old) != 2 || old[0].Index != 0 || old[1].Index != 2 {
		t.Errorf("old side: %+v", old)
	}
	newSide := d.GetInterestingLines("func", true)
	if len(newSide) != 2 || newSide[0].Index != 0 || newSide[1].Index != 1 {
		t.Errorf("new side: %+v", newSide)
	}
}

func TestCoalesceEditsOpcodesCoverWholeRange(t *testing.T) {
	a := []string{"1", "2", "3", "4", "5"}
	b := []string{"1", "x", "y", "4", "5", "6"}
	d := NewLineDiffer(a, b, false, 1)
	ops, err := d.Opcodes()
	if err != nil {
		t.Fatal(err)
	}
	// Opcodes must be gap-free and cover the full range on both sides.
	wantI, wantJ := 0, 0
	for _, o := range ops {
		if o.I1 != wantI || o.J1 != wantJ {
			t.Fatalf("gap/overlap at opcode %+v, want I1=%d J1=%d", o, wantI, wantJ)
		}
		wantI, wantJ = o.I2, o.J2
	}
	if wantI != len(a) || wantJ != len(b) {
		t.Fatalf("opcodes do not cover full range: ended at %d,%d want %d,%d", wantI, wantJ, len(a), len(b))
	}
}
