package diffcore

import "testing"

func TestHeaderScannerGoFunc(t *testing.T) {
	lines := []string{
		"package foo",
		"",
		"func A() {",
		"    x := 1",
		"    return x",
		"}",
		"",
		"func B() {",
		"    return",
		"}",
	}
	hs := NewHeaderScanner("foo.go", lines)
	hdr := hs.HeaderBefore(4) // inside func A, 0-based line 4 is "return x"
	if hdr == nil || hdr.Line != 3 {
		t.Fatalf("got %+v, want header at line 3", hdr)
	}

	hdr = hs.HeaderBefore(9)
	if hdr == nil || hdr.Line != 8 {
		t.Fatalf("got %+v, want header at line 8", hdr)
	}
}

func TestHeaderScannerMonotonicCursorDoesNotRescan(t *testing.T) {
	lines := []string{"func A() {", "}", "func B() {", "}"}
	hs := NewHeaderScanner("foo.go", lines)
	hs.HeaderBefore(3)
	// Querying an earlier index must not panic or rescan backward; it
	// simply returns the last-seen header as of the furthest point scanned.
	hdr := hs.HeaderBefore(1)
	if hdr == nil {
		t.Fatal("expected a header")
	}
}

func TestHeaderScannerUnknownExtensionDisabled(t *testing.T) {
	lines := []string{"func A() {", "}"}
	hs := NewHeaderScanner("foo.unknownext", lines)
	if hs.HeaderBefore(2) != nil {
		t.Error("expected nil header for unrecognized extension")
	}
	if got := hs.HeadersInRange(0, 2); got != nil {
		t.Errorf("expected nil headers, got %+v", got)
	}
}

func TestHeaderScannerAlias(t *testing.T) {
	lines := []string{"class Foo {", "  void bar() {}", "}"}
	hs := NewHeaderScanner("foo.hpp", lines)
	// "hpp" aliases to "c", whose patterns don't match a bare "class Foo {"
	// line (that's the C++ idiom, but the C table has no class regex for
	// this exact shape) -- this asserts the alias resolves without panicking
	// and returns a stable (possibly nil) result.
	_ = hs.HeaderBefore(3)
}

func TestHeaderScannerBareRakefile(t *testing.T) {
	lines := []string{"task :default do", "  puts 1", "end", "def helper", "end"}
	hs := NewHeaderScanner("Rakefile", lines)
	hdr := hs.HeaderBefore(4)
	if hdr == nil || hdr.Line != 4 {
		t.Fatalf("got %+v, want header at line 4 (Rakefile resolves to Ruby rules)", hdr)
	}
}

func TestHeaderScannerBareSConstruct(t *testing.T) {
	lines := []string{"def build():", "    pass"}
	hs := NewHeaderScanner("SConstruct", lines)
	hdr := hs.HeaderBefore(2)
	if hdr == nil || hdr.Line != 1 {
		t.Fatalf("got %+v, want header at line 1 (SConstruct resolves to Python rules)", hdr)
	}
}

func TestHeaderScannerPythonMultilineDefSignature(t *testing.T) {
	lines := []string{
		"def long_function(",
		"    a, b, c,",
		"):",
		"    return a",
	}
	hs := NewHeaderScanner("foo.py", lines)
	hdr := hs.HeaderBefore(4)
	if hdr == nil || hdr.Line != 1 {
		t.Fatalf("got %+v, want header at line 1 for a multi-line def signature", hdr)
	}
}

func TestHeaderScannerPerlAndObjC(t *testing.T) {
	perl := []string{"package Foo::Bar;", "sub greet {", "    return 1;", "}"}
	hs := NewHeaderScanner("foo.pm", perl)
	hdr := hs.HeaderBefore(3)
	if hdr == nil || hdr.Line != 2 {
		t.Fatalf("got %+v, want Perl sub header at line 2", hdr)
	}

	objc := []string{"@implementation Foo", "- (void)bar {", "}", "@end"}
	hs2 := NewHeaderScanner("foo.mm", objc)
	hdr2 := hs2.HeaderBefore(2)
	if hdr2 == nil || hdr2.Line != 2 {
		t.Fatalf("got %+v, want Objective-C method header at line 2", hdr2)
	}
}

func TestHeadersInRange(t *testing.T) {
	lines := []string{
		"func A() {",
		"  x := 1",
		"}",
		"func B() {",
		"  y := 2",
		"}",
	}
	hs := NewHeaderScanner("foo.go", lines)
	headers := hs.HeadersInRange(0, 6)
	if len(headers) != 2 {
		t.Fatalf("got %+v, want 2 headers", headers)
	}
	if headers[0].Line != 1 || headers[1].Line != 4 {
		t.Errorf("got lines %d,%d want 1,4", headers[0].Line, headers[1].Line)
	}
}
