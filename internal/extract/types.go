// Package extract defines the schema document produced by database
// extractors. The monitor consumes structural attributes only; the
// renderers consume the whole document.
package extract

import "time"

// Database is the extracted schema metadata of one database.
type Database struct {
	Name        string    `json:"name"`
	Server      string    `json:"server"`
	ExtractedAt time.Time `json:"extracted_at"`

	Tables     []Table     `json:"tables"`
	Views      []View      `json:"views"`
	Procedures []Procedure `json:"procedures"`
	Functions  []Function  `json:"functions"`
}

type Table struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`

	Columns         []Column `json:"columns"`
	PrimaryKey      []string `json:"primary_key,omitempty"`
	ConstraintCount int      `json:"constraint_count"`
	RowCount        int64    `json:"row_count"`
}

// QualifiedName returns the schema-qualified table name.
func (t Table) QualifiedName() string {
	return t.Schema + "." + t.Name
}

type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"` // rendered the way SQL Server displays it, e.g. nvarchar(50)
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
}

type View struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

func (v View) QualifiedName() string {
	return v.Schema + "." + v.Name
}

type Procedure struct {
	Schema   string    `json:"schema"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func (p Procedure) QualifiedName() string {
	return p.Schema + "." + p.Name
}

type Function struct {
	Schema   string    `json:"schema"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func (f Function) QualifiedName() string {
	return f.Schema + "." + f.Name
}
