package templates

import (
	"embed"
	"html"
	"html/template"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/sidediff/sidediff/pkg/reviewdiff"
)

var (
	funcMap = map[string]any{
		"add": func(a, b int) int { return a + b },
		// safeHTML marks already-escaped diff markup (produced by
		// diffcore, which HTML-escapes its own output since it has no
		// html/template dependency) as safe to emit verbatim, instead of
		// having html/template double-escape it.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}
	Templates = template.Must(
		template.New("").
			Funcs(funcMap).
			ParseFS(templateFS, "*.tmpl"),
	)
	//go:embed *
	templateFS embed.FS
)

// FileTemplateData is what file.tmpl renders: one file's diff, plus the
// query-string state needed to build the context-size and whitespace-mode
// links around it.
type FileTemplateData struct {
	ID      string
	File    reviewdiff.FileDiff
	Space   string
	Context int
	Query   url.Values
}

func (f *FileTemplateData) WithQueryValue(key, value string) string {
	uvCopy := make(url.Values)
	maps.Copy(uvCopy, f.Query)
	if value == "" {
		uvCopy.Del(key)
	} else {
		uvCopy.Set(key, value)
	}
	if len(uvCopy) == 0 {
		return ""
	}
	return "?" + uvCopy.Encode()
}

func (f *FileTemplateData) ContextLinks() template.HTML {
	const (
		minVal = 0
		maxVal = 1000
	)
	smallest := f.Context - 3
	greatest := f.Context + 3
	if smallest < minVal {
		greatest += (minVal - smallest)
		smallest = minVal
	}
	if greatest > maxVal {
		smallest -= (greatest - maxVal)
		greatest = maxVal
	}
	var bld strings.Builder

	for i := smallest; i <= greatest; i++ {
		if bld.Len() != 0 {
			bld.WriteString(" | ")
		}
		if i == f.Context {
			bld.WriteString("<b>" + strconv.Itoa(f.Context) + "</b>")
			continue
		}
		intString := strconv.Itoa(i)
		if intString == "5" {
			intString = ""
		}
		uri := "/" + f.ID + f.WithQueryValue("c", intString)
		bld.WriteString(
			`<a href="` + html.EscapeString(uri) + `">` +
				strconv.Itoa(i) + `</a>`,
		)
	}
	return template.HTML(bld.String())
}
