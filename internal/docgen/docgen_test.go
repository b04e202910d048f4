package docgen

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/extract"
)

type mockExtractor struct {
	doc *extract.Database
	err error

	gotDatabase   string
	gotConnection string
}

func (m *mockExtractor) ExtractSchema(_ context.Context, database, connectionID string) (*extract.Database, error) {
	m.gotDatabase = database
	m.gotConnection = connectionID
	return m.doc, m.err
}

type mockRenderer struct {
	files []string
	err   error

	gotFormats []string
}

func (m *mockRenderer) RenderAll(_ *extract.Database, formats []string) ([]string, error) {
	m.gotFormats = formats
	return m.files, m.err
}

func sampleDoc() *extract.Database {
	return &extract.Database{
		Name: "Northwind",
		Tables: []extract.Table{
			{Schema: "dbo", Name: "Orders"},
			{Schema: "dbo", Name: "Customers"},
		},
		Views:      []extract.View{{Schema: "dbo", Name: "ActiveOrders"}},
		Procedures: []extract.Procedure{{Schema: "dbo", Name: "usp_GetOrders"}},
	}
}

func mustPayload(t *testing.T, v any) domain.Payload {
	t.Helper()
	p, err := domain.PayloadFrom(v)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return p
}

func TestHandler_ExtractsAndRenders(t *testing.T) {
	extractor := &mockExtractor{doc: sampleDoc()}
	renderer := &mockRenderer{files: []string{"/docs/Northwind_documentation.md"}}
	handler := NewHandler(extractor, renderer)

	config := mustPayload(t, Config{
		Database:     "Northwind",
		ConnectionID: "prod",
		Formats:      []string{"markdown"},
	})

	out, err := handler(context.Background(), config)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	if extractor.gotDatabase != "Northwind" || extractor.gotConnection != "prod" {
		t.Errorf("extracted %s (%s), want Northwind (prod)", extractor.gotDatabase, extractor.gotConnection)
	}
	if !reflect.DeepEqual(renderer.gotFormats, []string{"markdown"}) {
		t.Errorf("rendered formats = %v, want [markdown]", renderer.gotFormats)
	}

	var result Result
	if err := out.Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Database != "Northwind" {
		t.Errorf("result database = %q, want %q", result.Database, "Northwind")
	}
	if !reflect.DeepEqual(result.Files, []string{"/docs/Northwind_documentation.md"}) {
		t.Errorf("result files = %v", result.Files)
	}
	want := Counts{Tables: 2, Views: 1, Procedures: 1, Functions: 0}
	if result.Counts != want {
		t.Errorf("result counts = %+v, want %+v", result.Counts, want)
	}
}

func TestHandler_EmptyFormatsReportsAllFormats(t *testing.T) {
	extractor := &mockExtractor{doc: sampleDoc()}
	renderer := &mockRenderer{files: []string{"a.md", "a.html", "a.json"}}
	handler := NewHandler(extractor, renderer)

	out, err := handler(context.Background(), mustPayload(t, Config{Database: "Northwind"}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var result Result
	if err := out.Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !reflect.DeepEqual(result.Formats, []string{"markdown", "html", "json"}) {
		t.Errorf("result formats = %v, want all three", result.Formats)
	}
}

func TestHandler_RequiresDatabase(t *testing.T) {
	handler := NewHandler(&mockExtractor{doc: sampleDoc()}, &mockRenderer{})

	_, err := handler(context.Background(), mustPayload(t, Config{ConnectionID: "prod"}))
	if err == nil {
		t.Fatal("handler should reject a config without a database")
	}
	if !strings.Contains(err.Error(), "database") {
		t.Errorf("error %q should mention the missing database", err)
	}
}

func TestHandler_PropagatesExtractFailure(t *testing.T) {
	boom := errors.New("connection refused")
	handler := NewHandler(&mockExtractor{err: boom}, &mockRenderer{})

	_, err := handler(context.Background(), mustPayload(t, Config{Database: "Northwind"}))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestHandler_PropagatesRenderFailure(t *testing.T) {
	boom := errors.New("disk full")
	handler := NewHandler(&mockExtractor{doc: sampleDoc()}, &mockRenderer{err: boom})

	_, err := handler(context.Background(), mustPayload(t, Config{Database: "Northwind"}))
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
