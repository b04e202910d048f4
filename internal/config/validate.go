package config

import (
	"fmt"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	if cfg.StoreDriver != DriverSQLite && cfg.StoreDriver != DriverPostgres {
		errs = append(errs, ValidationError{
			Field:   "SCHEMADOC_STORE_DRIVER",
			Message: fmt.Sprintf("must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.StoreDriver),
		})
	}

	if cfg.StoreDriver == DriverPostgres && cfg.StoreDSN == "" {
		errs = append(errs, ValidationError{
			Field:   "SCHEMADOC_STORE_DSN",
			Message: "required when the store driver is postgres",
		})
	}

	errs = append(errs, checkDuration("SCHEMADOC_SCHEDULER_TICK", cfg.SchedulerTickStr)...)
	errs = append(errs, checkDuration("SCHEMADOC_HTTP_TIMEOUT", cfg.HTTPTimeoutStr)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkDuration(field, value string) ValidationErrors {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return ValidationErrors{{Field: field, Message: fmt.Sprintf("invalid duration: %v", err)}}
	}
	if d <= 0 {
		return ValidationErrors{{Field: field, Message: "must be positive"}}
	}
	return nil
}
