package http

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sidediff/sidediff/pkg/diffcore"
	"github.com/sidediff/sidediff/pkg/reviewdiff"
	"github.com/sidediff/sidediff/templates"
)

func (s *Server) serveDiff(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	wantRaw := false
	if strings.HasSuffix(id, ".diff") {
		id = id[:len(id)-len(".diff")]
		wantRaw = true
	} else if !isBrowser(r) {
		wantRaw = true
	}

	files, err := s.getFiles(r.Context(), id)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		w.WriteHeader(404)
		w.Write([]byte("not found"))
		return nil
	}

	qry := r.URL.Query()
	cfg := diffcore.DefaultConfig()
	space := qry.Get("w")
	switch space {
	case "w": // treated like "b": runs of whitespace compare equal, but whitespace is not ignored entirely
		cfg.IncludeSpacePatterns = nil
	case "b": // --ignore-space-change
		cfg.IncludeSpacePatterns = nil
	default:
		space = ""
		// No "w"/"b" requested: diff this file with whitespace
		// significant.
		cfg.IncludeSpacePatterns = []string{"*"}
	}
	if c, err := strconv.Atoi(qry.Get("c")); err == nil {
		cfg.ContextNumLines = max(0, min(1000, c))
	}
	if wantRaw {
		// Plain-text clients get the source text back verbatim; chroma's
		// <span> markup has no business in a text/plain response.
		cfg.SyntaxHighlighting = false
	}

	fd, err := reviewdiff.BuildFileDiff(
		[]byte(files[0].Content), []byte(files[1].Content),
		files[0].Name, files[1].Name,
		cfg,
	)
	if err != nil {
		return err
	}

	if wantRaw {
		w.Header().Set(ctHeader, ctPlain)
		w.Write([]byte(renderUnifiedText(fd, files[0].Name, files[1].Name)))
		return nil
	}

	return templates.Templates.ExecuteTemplate(w, "file.tmpl", &templates.FileTemplateData{
		ID:      id,
		File:    fd,
		Space:   space,
		Context: cfg.ContextNumLines,
		Query:   qry,
	})
}

// renderUnifiedText renders a FileDiff back into plain diff-style text, one
// marker-prefixed line per rendered line, for non-browser clients (curl, CI)
// and the ".diff" suffix shortcut. Collapsed chunks carry their full Lines
// and are printed like any other, so raw output always shows the full file.
func renderUnifiedText(fd reviewdiff.FileDiff, oldName, newName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldName, newName)
	for _, c := range fd.Chunks {
		for _, l := range c.Lines {
			switch {
			case c.Change == diffcore.TagEqual:
				fmt.Fprintf(&b, " %s\n", oldLineText(l))
			case l.OrigLineno != 0 && l.NewLineno != 0:
				fmt.Fprintf(&b, "-%s\n+%s\n", html.UnescapeString(l.OrigMarkup), html.UnescapeString(l.NewMarkup))
			case l.OrigLineno != 0:
				fmt.Fprintf(&b, "-%s\n", html.UnescapeString(l.OrigMarkup))
			case l.NewLineno != 0:
				fmt.Fprintf(&b, "+%s\n", html.UnescapeString(l.NewMarkup))
			}
		}
	}
	return b.String()
}

func oldLineText(l diffcore.RenderedLine) string {
	if l.OrigLineno != 0 {
		return html.UnescapeString(l.OrigMarkup)
	}
	return html.UnescapeString(l.NewMarkup)
}

func (s *Server) getFiles(ctx context.Context, id string) ([]reviewdiff.ArchiveFile, error) {
	if id == "example" {
		return exampleFiles, nil
	}

	f, err := s.DB.GetFile(id)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return nil, nil
	}

	data, err := s.Storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	files, err := reviewdiff.DecodeArchive(data)
	if err != nil {
		return nil, err
	}
	if len(files) != 2 {
		return nil, fmt.Errorf("expected 2 files got %d", len(files))
	}
	return files, nil
}

var exampleFiles = []reviewdiff.ArchiveFile{
	{
		Name: "main.go",
		Content: `package main

import "fmt"

func sayHello(to string) string {
	return "hello " + to + "!"
}

func main() {
	fmt.Println(sayHello("world"))
}
`,
	},
	{
		Name: "server.go",
		Content: `package main

import (
	"fmt"
	"net/http"
	"os"
)

// sayHello greets whoever is passed in as an argument.
func sayHello(to string) string {
	return "hello " + to + "!"
}

func main() {
	if os.Getenv("DEBUG") == "1" {
		fmt.Println(sayHello("world"))
	}
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sayHello("internet")))
	})
	panic(http.ListenAndServe(":8080", nil))
}
`,
	},
}

func (s *Server) serveFile(n int) func(w http.ResponseWriter, r *http.Request) {
	return s.e(func(w http.ResponseWriter, r *http.Request) error {
		return s._serveFile(w, r, n)
	})
}

func (s *Server) _serveFile(w http.ResponseWriter, r *http.Request, idx int) error {
	id := chi.URLParam(r, "id")

	files, err := s.getFiles(r.Context(), id)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		w.WriteHeader(404)
		w.Write([]byte("not found"))
		return nil
	}

	fn := files[idx]
	w.Header().Set(ctHeader, ctPlain)
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(fn.Name))
	w.Write([]byte(fn.Content))
	return nil
}
