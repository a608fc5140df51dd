package patch

import (
	"context"
	"os"
	"testing"
)

func TestApplierSuccess(t *testing.T) {
	dir := t.TempDir()
	a := &Applier{Dir: dir, Bin: "true"}

	res, err := a.Apply(context.Background(), "", []byte("--- a\n+++ b\n"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Applied {
		t.Fatalf("expected Applied=true")
	}
	if res.RejPath != "" {
		t.Fatalf("expected no RejPath on success, got %q", res.RejPath)
	}
}

func TestApplierFailureKeepsTempDir(t *testing.T) {
	dir := t.TempDir()
	a := &Applier{Dir: dir, Bin: "false"}

	res, err := a.Apply(context.Background(), "", []byte("bogus diff"))
	if err == nil {
		t.Fatalf("expected error from failing patch command")
	}
	if res.Applied {
		t.Fatalf("expected Applied=false")
	}
	if res.RejPath == "" {
		t.Fatalf("expected RejPath to be set on failure")
	}
	if _, statErr := os.Stat(res.RejPath); statErr != nil {
		t.Fatalf("expected temp dir %q to still exist: %v", res.RejPath, statErr)
	}
	os.RemoveAll(res.RejPath)
}
