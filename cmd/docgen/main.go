// docgen extracts one configured database and writes its documentation
// files immediately, without going through the scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schemadoc/schemadoc/internal/config"
	"github.com/schemadoc/schemadoc/internal/extract/mssql"
	"github.com/schemadoc/schemadoc/internal/render"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) >= 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		printUsage()
		return exitSuccess
	}
	if len(args) < 1 {
		printUsage()
		return exitInvalidConfig
	}

	database := args[0]
	connectionID := ""
	if len(args) > 1 {
		connectionID = args[1]
	}

	cfg := config.Load()
	settings, err := config.LoadSettings(cfg.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings error: %v\n", err)
		return exitInvalidConfig
	}

	target, ok := findTarget(settings, database, connectionID)
	if !ok {
		if connectionID != "" {
			fmt.Fprintf(os.Stderr, "no target %s (%s) in %s\n", database, connectionID, cfg.ConfigFile)
		} else {
			fmt.Fprintf(os.Stderr, "no target %s in %s\n", database, cfg.ConfigFile)
		}
		return exitInvalidConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("extracting %s from %s\n", target.Database, target.Server)
	doc, err := mssql.Extract(ctx, targetConfig(target))
	if err != nil {
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
		return exitRuntimeError
	}

	files, err := render.New(cfg.DocsDir).RenderAll(doc, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		return exitRuntimeError
	}

	fmt.Printf("documented %d tables, %d views, %d procedures, %d functions\n",
		len(doc.Tables), len(doc.Views), len(doc.Procedures), len(doc.Functions))
	for _, f := range files {
		fmt.Println("wrote", f)
	}
	return exitSuccess
}

func printUsage() {
	fmt.Println(`docgen - one-shot schema documentation generator

Usage:
  docgen <database> [connection-id]

Extracts the named target from the schemadoc settings file and writes
Markdown, HTML and JSON documentation to the output directory. When the
connection id is omitted, the first target for the database is used.

Environment Variables:
  SCHEMADOC_CONFIG_FILE  Settings file path (default: "schemadoc.json")
  SCHEMADOC_DOCS_DIR     Documentation output directory (default: "docs-output")`)
}

// findTarget resolves a database name (and optional connection id)
// against the settings file's target list.
func findTarget(settings config.Settings, database, connectionID string) (config.TargetSettings, bool) {
	for _, t := range settings.Monitoring.Targets {
		if t.Database != database {
			continue
		}
		if connectionID == "" || t.ConnectionID == connectionID {
			return t, true
		}
	}
	return config.TargetSettings{}, false
}

func targetConfig(t config.TargetSettings) mssql.Config {
	return mssql.Config{
		Database:               t.Database,
		ConnectionID:           t.ConnectionID,
		Auth:                   t.Auth,
		Server:                 t.Server,
		Port:                   t.Port,
		Username:               t.Username,
		Password:               t.Password,
		ClientID:               t.ClientID,
		ClientSecret:           t.ClientSecret,
		TenantID:               t.TenantID,
		TrustServerCertificate: t.TrustServerCertificate,
	}
}
