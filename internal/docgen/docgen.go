// Package docgen provides the built-in schema_documentation job type:
// extract one configured target and render its documentation files.
package docgen

import (
	"context"
	"fmt"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/extract"
	"github.com/schemadoc/schemadoc/internal/registry"
	"github.com/schemadoc/schemadoc/internal/render"
)

// JobType is the name the handler registers under.
const JobType = "schema_documentation"

// Extractor produces the schema document for a configured target.
type Extractor interface {
	ExtractSchema(ctx context.Context, database, connectionID string) (*extract.Database, error)
}

// Renderer writes a schema document to documentation files.
type Renderer interface {
	RenderAll(doc *extract.Database, formats []string) ([]string, error)
}

// Config is the job's config payload.
type Config struct {
	Database     string   `json:"database"`
	ConnectionID string   `json:"connection_id"`
	Formats      []string `json:"formats,omitempty"`
}

// Result is the job's result payload.
type Result struct {
	Database string   `json:"database"`
	Formats  []string `json:"formats"`
	Files    []string `json:"files"`
	Counts   Counts   `json:"counts"`
}

// Counts tallies the documented objects by type.
type Counts struct {
	Tables     int `json:"tables"`
	Views      int `json:"views"`
	Procedures int `json:"procedures"`
	Functions  int `json:"functions"`
}

// NewHandler builds the schema_documentation handler. The config
// payload selects the extraction target and output formats; the result
// payload reports what was written.
func NewHandler(extractor Extractor, renderer Renderer) registry.Handler {
	return func(ctx context.Context, config domain.Payload) (domain.Payload, error) {
		var cfg Config
		if err := config.Decode(&cfg); err != nil {
			return nil, err
		}
		if cfg.Database == "" {
			return nil, fmt.Errorf("documentation job config requires a database")
		}

		doc, err := extractor.ExtractSchema(ctx, cfg.Database, cfg.ConnectionID)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", cfg.Database, err)
		}

		files, err := renderer.RenderAll(doc, cfg.Formats)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", cfg.Database, err)
		}

		formats := cfg.Formats
		if len(formats) == 0 {
			formats = render.AllFormats()
		}
		return domain.PayloadFrom(Result{
			Database: cfg.Database,
			Formats:  formats,
			Files:    files,
			Counts: Counts{
				Tables:     len(doc.Tables),
				Views:      len(doc.Views),
				Procedures: len(doc.Procedures),
				Functions:  len(doc.Functions),
			},
		})
	}
}
