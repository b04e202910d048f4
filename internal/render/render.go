// Package render writes extracted schema documents to disk as Markdown,
// HTML and JSON documentation files.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/schemadoc/schemadoc/internal/extract"
)

// Supported output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// AllFormats lists every supported output format.
func AllFormats() []string {
	return []string{FormatMarkdown, FormatHTML, FormatJSON}
}

// Renderer writes documentation files into one output directory.
type Renderer struct {
	outputDir string
}

func New(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

// RenderAll writes the document in the requested formats and returns
// the written file paths in request order. An empty format list means
// every supported format.
func (r *Renderer) RenderAll(doc *extract.Database, formats []string) ([]string, error) {
	if len(formats) == 0 {
		formats = AllFormats()
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := make([]string, 0, len(formats))
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case FormatMarkdown:
			path, err = r.renderMarkdown(doc)
		case FormatHTML:
			path, err = r.renderHTML(doc)
		case FormatJSON:
			path, err = r.renderJSON(doc)
		default:
			return nil, fmt.Errorf("unsupported output format %q (expected %s, %s or %s)",
				format, FormatMarkdown, FormatHTML, FormatJSON)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func (r *Renderer) renderJSON(doc *extract.Database) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := r.filePath(doc.Name, "json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Renderer) filePath(database, ext string) string {
	return filepath.Join(r.outputDir, database+"_documentation."+ext)
}

// templateData wraps the document with the aggregate the templates
// cannot compute themselves.
type templateData struct {
	Doc       *extract.Database
	TotalRows int64
}

func newTemplateData(doc *extract.Database) templateData {
	var rows int64
	for _, t := range doc.Tables {
		rows += t.RowCount
	}
	return templateData{Doc: doc, TotalRows: rows}
}

// templateFuncs is shared by the Markdown and HTML templates.
// html/template.FuncMap aliases this type.
var templateFuncs = template.FuncMap{
	"formatDate":  formatDate,
	"formatCount": formatCount,
	"yesNo":       yesNo,
	"join":        strings.Join,
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// formatCount renders a row count with thousands separators, e.g.
// 1234567 becomes 1,234,567.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
