package reviewdiff

import (
	"context"
	"testing"

	"github.com/sidediff/sidediff/pkg/diffcore"
	"github.com/sidediff/sidediff/pkg/storage"
)

type memStorage map[string][]byte

func (m memStorage) Get(ctx context.Context, id string) ([]byte, error) {
	b, ok := m[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}
func (m memStorage) Put(ctx context.Context, id string, data []byte) error {
	m[id] = data
	return nil
}
func (m memStorage) Del(ctx context.Context, id string) error {
	delete(m, id)
	return nil
}

func TestServiceLoadAndDiff(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"old/foo.go": "package foo\n\nfunc A() int { return 1 }\n",
		"new/foo.go": "package foo\n\nfunc A() int { return 2 }\n",
	})
	store := memStorage{"abc": archive}
	cfg := diffcore.DefaultConfig()
	cfg.SyntaxHighlighting = false
	svc := &Service{Store: store, Cfg: cfg}

	fd, err := svc.LoadAndDiff(context.Background(), "abc", "old/foo.go", "new/foo.go")
	if err != nil {
		t.Fatal(err)
	}
	if fd.NumChanges == 0 {
		t.Fatal("expected a changed chunk")
	}
}

func TestServiceLoadAndDiffNotFound(t *testing.T) {
	svc := &Service{Store: memStorage{}, Cfg: diffcore.DefaultConfig()}
	_, err := svc.LoadAndDiff(context.Background(), "missing", "a", "b")
	if err == nil {
		t.Fatal("expected an error for a missing id")
	}
}

func TestServiceLoadAndDiffWrongFileCount(t *testing.T) {
	archive := buildArchive(t, map[string]string{"only/one.go": "x\n"})
	store := memStorage{"abc": archive}
	svc := &Service{Store: store, Cfg: diffcore.DefaultConfig()}
	_, err := svc.LoadAndDiff(context.Background(), "abc", "a", "b")
	if err == nil {
		t.Fatal("expected an error when the archive does not contain exactly 2 files")
	}
}

func TestHighlightPolicyEnabled(t *testing.T) {
	site := HighlightPolicy{SiteDefault: true}
	if !site.Enabled(Profile{SyntaxHighlightingEnabled: true}) {
		t.Error("expected highlighting enabled when both site and user allow it")
	}
	if site.Enabled(Profile{SyntaxHighlightingEnabled: false}) {
		t.Error("expected user opt-out to win")
	}
	off := HighlightPolicy{SiteDefault: false}
	if off.Enabled(Profile{SyntaxHighlightingEnabled: true}) {
		t.Error("expected site-wide disable to win regardless of user preference")
	}
}
