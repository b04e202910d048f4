package render

import (
	"bytes"
	"os"
	"text/template"

	"github.com/schemadoc/schemadoc/internal/extract"
)

func (r *Renderer) renderMarkdown(doc *extract.Database) (string, error) {
	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, newTemplateData(doc)); err != nil {
		return "", err
	}
	path := r.filePath(doc.Name, "md")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var markdownTemplate = template.Must(template.New("markdown").Funcs(templateFuncs).Parse(`# {{.Doc.Name}} - Database Documentation

**Server:** {{.Doc.Server}}
**Generated:** {{formatDate .Doc.ExtractedAt}}

## Overview

| Objects | Count |
|---------|-------|
| Tables | {{len .Doc.Tables}} |
| Views | {{len .Doc.Views}} |
| Stored Procedures | {{len .Doc.Procedures}} |
| Functions | {{len .Doc.Functions}} |
| Total Rows | {{formatCount .TotalRows}} |

## Tables
{{range .Doc.Tables}}
### {{.QualifiedName}}

**Rows:** {{formatCount .RowCount}}

| Column | Data Type | Nullable | Default |
|--------|-----------|----------|---------|
{{range .Columns -}}
| {{.Name}} | {{.DataType}} | {{yesNo .Nullable}} | {{.Default}} |
{{end -}}
{{if .PrimaryKey}}
**Primary Key:** {{join .PrimaryKey ", "}}
{{end -}}
{{if .ConstraintCount}}
**Constraints:** {{.ConstraintCount}}
{{end -}}
{{end}}
## Views
{{range .Doc.Views}}
- {{.QualifiedName}}
{{- end}}

## Stored Procedures

| Schema | Name | Created | Modified |
|--------|------|---------|----------|
{{range .Doc.Procedures -}}
| {{.Schema}} | {{.Name}} | {{formatDate .Created}} | {{formatDate .Modified}} |
{{end}}
## Functions

| Schema | Name | Created | Modified |
|--------|------|---------|----------|
{{range .Doc.Functions -}}
| {{.Schema}} | {{.Name}} | {{formatDate .Created}} | {{formatDate .Modified}} |
{{end}}
---
*Generated by schemadoc on {{formatDate .Doc.ExtractedAt}}*
`))
