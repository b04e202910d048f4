package render

import (
	"bytes"
	"html/template"
	"os"

	"github.com/schemadoc/schemadoc/internal/extract"
)

func (r *Renderer) renderHTML(doc *extract.Database) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, newTemplateData(doc)); err != nil {
		return "", err
	}
	path := r.filePath(doc.Name, "html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var htmlTemplate = template.Must(template.New("html").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Doc.Name}} - Database Documentation</title>
<style>
    body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; }
    .header { background: #f4f4f4; padding: 20px; border-radius: 5px; margin-bottom: 30px; }
    table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    .table-section { margin: 20px 0; padding: 15px; background: #f9f9f9; border-radius: 3px; }
    .constraint-info { font-size: 0.9em; color: #666; margin: 5px 0; }
    .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 15px; margin: 20px 0; }
    .stat-box { background: #f0f8ff; padding: 15px; border-radius: 5px; text-align: center; }
    .stat-number { font-size: 2em; font-weight: bold; color: #007acc; }
    footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 0.9em; color: #666; }
</style>
</head>
<body>
<div class="header">
    <h1>{{.Doc.Name}} - Database Documentation</h1>
    <p><strong>Server:</strong> {{.Doc.Server}}</p>
    <p><strong>Generated:</strong> {{formatDate .Doc.ExtractedAt}}</p>
</div>

<div class="stats-grid">
    <div class="stat-box"><div class="stat-number">{{len .Doc.Tables}}</div><div>Tables</div></div>
    <div class="stat-box"><div class="stat-number">{{len .Doc.Views}}</div><div>Views</div></div>
    <div class="stat-box"><div class="stat-number">{{len .Doc.Procedures}}</div><div>Stored Procedures</div></div>
    <div class="stat-box"><div class="stat-number">{{len .Doc.Functions}}</div><div>Functions</div></div>
    <div class="stat-box"><div class="stat-number">{{formatCount .TotalRows}}</div><div>Total Rows</div></div>
</div>

<h2>Tables</h2>
{{range .Doc.Tables}}
<div class="table-section">
    <h3>{{.QualifiedName}}</h3>
    <p><strong>Rows:</strong> {{formatCount .RowCount}}</p>
    <table>
        <thead><tr><th>Column</th><th>Data Type</th><th>Nullable</th><th>Default</th></tr></thead>
        <tbody>
        {{range .Columns}}<tr><td>{{.Name}}</td><td>{{.DataType}}</td><td>{{yesNo .Nullable}}</td><td>{{.Default}}</td></tr>
        {{end}}</tbody>
    </table>
    {{if .PrimaryKey}}<div class="constraint-info"><strong>Primary Key:</strong> {{join .PrimaryKey ", "}}</div>
    {{end}}<div class="constraint-info"><strong>Constraints:</strong> {{.ConstraintCount}}</div>
</div>
{{end}}
<h2>Views</h2>
<table>
    <thead><tr><th>Schema</th><th>Name</th></tr></thead>
    <tbody>
    {{range .Doc.Views}}<tr><td>{{.Schema}}</td><td>{{.Name}}</td></tr>
    {{end}}</tbody>
</table>

<h2>Stored Procedures</h2>
<table>
    <thead><tr><th>Schema</th><th>Name</th><th>Created</th><th>Modified</th></tr></thead>
    <tbody>
    {{range .Doc.Procedures}}<tr><td>{{.Schema}}</td><td>{{.Name}}</td><td>{{formatDate .Created}}</td><td>{{formatDate .Modified}}</td></tr>
    {{end}}</tbody>
</table>

<h2>Functions</h2>
<table>
    <thead><tr><th>Schema</th><th>Name</th><th>Created</th><th>Modified</th></tr></thead>
    <tbody>
    {{range .Doc.Functions}}<tr><td>{{.Schema}}</td><td>{{.Name}}</td><td>{{formatDate .Created}}</td><td>{{formatDate .Modified}}</td></tr>
    {{end}}</tbody>
</table>

<footer>Generated by schemadoc on {{formatDate .Doc.ExtractedAt}}</footer>
</body>
</html>
`))
