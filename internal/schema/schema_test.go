package schema

import (
	"testing"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/extract"
)

func sampleDatabase() *extract.Database {
	return &extract.Database{
		Name: "sales",
		Tables: []extract.Table{
			{
				Schema: "dbo",
				Name:   "orders",
				Columns: []extract.Column{
					{Name: "id", DataType: "int"},
					{Name: "placed_at", DataType: "datetime2"},
					{Name: "total", DataType: "decimal(10,2)"},
				},
				ConstraintCount: 2,
			},
			{
				Schema: "dbo",
				Name:   "customers",
				Columns: []extract.Column{
					{Name: "id", DataType: "int"},
					{Name: "name", DataType: "nvarchar(100)"},
				},
				ConstraintCount: 1,
			},
		},
		Views:      []extract.View{{Schema: "dbo", Name: "open_orders"}},
		Procedures: []extract.Procedure{{Schema: "dbo", Name: "close_order"}},
		Functions:  []extract.Function{{Schema: "dbo", Name: "order_total"}},
	}
}

func TestFingerprint_Stable(t *testing.T) {
	db := sampleDatabase()
	first := Canonicalize(db).Fingerprint()
	second := Canonicalize(db).Fingerprint()
	if first != second {
		t.Errorf("fingerprint not stable: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(first))
	}
}

// Extraction order must never affect the fingerprint.
func TestFingerprint_IgnoresOrdering(t *testing.T) {
	db := sampleDatabase()
	base := Canonicalize(db).Fingerprint()

	shuffled := sampleDatabase()
	shuffled.Tables[0], shuffled.Tables[1] = shuffled.Tables[1], shuffled.Tables[0]
	cols := shuffled.Tables[0].Columns
	cols[0], cols[1] = cols[1], cols[0]

	if got := Canonicalize(shuffled).Fingerprint(); got != base {
		t.Errorf("reordered input changed fingerprint: %s vs %s", got, base)
	}
}

func TestFingerprint_SensitiveToStructure(t *testing.T) {
	base := Canonicalize(sampleDatabase()).Fingerprint()

	tests := []struct {
		name   string
		mutate func(db *extract.Database)
	}{
		{"column renamed", func(db *extract.Database) {
			db.Tables[0].Columns[0].Name = "order_id"
		}},
		{"column type changed", func(db *extract.Database) {
			db.Tables[0].Columns[2].DataType = "decimal(12,4)"
		}},
		{"table added", func(db *extract.Database) {
			db.Tables = append(db.Tables, extract.Table{Schema: "dbo", Name: "refunds"})
		}},
		{"table removed", func(db *extract.Database) {
			db.Tables = db.Tables[:1]
		}},
		{"view removed", func(db *extract.Database) {
			db.Views = nil
		}},
		{"constraint count changed", func(db *extract.Database) {
			db.Tables[0].ConstraintCount++
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := sampleDatabase()
			tt.mutate(db)
			if got := Canonicalize(db).Fingerprint(); got == base {
				t.Error("mutation did not change the fingerprint")
			}
		})
	}
}

// Row counts, nullability, defaults and timestamps are presentation
// details, not structure.
func TestFingerprint_IgnoresNonStructuralAttributes(t *testing.T) {
	base := Canonicalize(sampleDatabase()).Fingerprint()

	db := sampleDatabase()
	db.Tables[0].RowCount = 99999
	db.Tables[0].Columns[0].Nullable = true
	db.Tables[0].Columns[0].Default = "0"

	if got := Canonicalize(db).Fingerprint(); got != base {
		t.Errorf("non-structural attribute changed fingerprint: %s vs %s", got, base)
	}
}

func TestCanonical_Counts(t *testing.T) {
	got := Canonicalize(sampleDatabase()).Counts()
	want := domain.ObjectCounts{Tables: 2, Views: 1, Procedures: 1, Functions: 1}
	if got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
}

func TestChangeSummary(t *testing.T) {
	tests := []struct {
		name string
		prev domain.ObjectCounts
		cur  domain.ObjectCounts
		want string
	}{
		{
			"tables added and views removed",
			domain.ObjectCounts{Tables: 3, Views: 2},
			domain.ObjectCounts{Tables: 5, Views: 1},
			"tables: +2, views: -1",
		},
		{
			"single delta",
			domain.ObjectCounts{Tables: 3},
			domain.ObjectCounts{Tables: 4},
			"tables: +1",
		},
		{
			"all object types",
			domain.ObjectCounts{Tables: 1, Views: 1, Procedures: 1, Functions: 1},
			domain.ObjectCounts{Tables: 2, Views: 2, Procedures: 2, Functions: 2},
			"tables: +1, views: +1, procedures: +1, functions: +1",
		},
		{
			"equal counts fall back to structure modified",
			domain.ObjectCounts{Tables: 3, Views: 1},
			domain.ObjectCounts{Tables: 3, Views: 1},
			"structure modified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChangeSummary(tt.prev, tt.cur); got != tt.want {
				t.Errorf("ChangeSummary = %q, want %q", got, tt.want)
			}
		})
	}
}
