package mssql

import (
	"fmt"
	"strings"

	"github.com/microsoft/go-mssqldb/azuread"
)

// Auth modes for a target connection.
const (
	AuthCredentials      = "credentials"
	AuthInteractive      = "interactive"
	AuthServicePrincipal = "service_principal"
)

const (
	defaultPort = 1433
	// dialTimeoutSeconds bounds the initial connect so a dead server
	// cannot hold a monitor tick indefinitely.
	dialTimeoutSeconds = 30
)

// Config describes one extraction target: which database to document
// and how to authenticate against its server.
type Config struct {
	Database     string
	ConnectionID string

	Auth   string // AuthCredentials (default), AuthInteractive or AuthServicePrincipal
	Server string
	Port   int

	// SQL authentication.
	Username string
	Password string

	// Service principal authentication.
	ClientID     string
	ClientSecret string
	TenantID     string

	TrustServerCertificate bool
}

// buildDSN renders the connection string for the target's auth mode and
// returns the driver name to open it with. Azure AD modes go through
// the fedauth-aware driver; plain credentials use the standard one.
func buildDSN(cfg Config) (driverName, dsn string, err error) {
	var b strings.Builder
	fmt.Fprintf(&b, "server=%s;port=%d;database=%s", cfg.Server, portOrDefault(cfg.Port), cfg.Database)

	switch cfg.Auth {
	case AuthCredentials, "":
		driverName = "sqlserver"
		fmt.Fprintf(&b, ";user id=%s;password=%s", cfg.Username, cfg.Password)
	case AuthInteractive:
		driverName = azuread.DriverName
		b.WriteString(";fedauth=ActiveDirectoryInteractive")
	case AuthServicePrincipal:
		driverName = azuread.DriverName
		fmt.Fprintf(&b, ";fedauth=ActiveDirectoryServicePrincipal;user id=%s@%s;password=%s",
			cfg.ClientID, cfg.TenantID, cfg.ClientSecret)
	default:
		return "", "", fmt.Errorf("unsupported auth mode %q for %s (expected %s, %s or %s)",
			cfg.Auth, cfg.Database, AuthCredentials, AuthInteractive, AuthServicePrincipal)
	}

	b.WriteString(";encrypt=true")
	if cfg.TrustServerCertificate {
		b.WriteString(";trustservercertificate=true")
	}
	fmt.Fprintf(&b, ";dial timeout=%d", dialTimeoutSeconds)

	return driverName, b.String(), nil
}

func portOrDefault(port int) int {
	if port <= 0 {
		return defaultPort
	}
	return port
}
