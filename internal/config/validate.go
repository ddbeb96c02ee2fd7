package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	c.Database.validate(result)
	c.Server.validate(result)
	c.Observability.validate(result)
	return result
}

var validSSLModes = map[string]bool{
	"":            true,
	"disable":     true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	dialect, err := d.Dialect()
	if err != nil {
		result.addError("database.driver", err.Error(), "use mysql, postgres, or sqlite3")
		return
	}

	if d.ConnectionString == "" {
		if dialect.DriverName() == "sqlite3" {
			if strings.TrimSpace(d.Database) == "" {
				result.addError("database.database", "sqlite3 requires a database file path", "set database.database or database.dsn")
			}
		} else {
			if strings.TrimSpace(d.Host) == "" {
				result.addError("database.host", "host is required when dsn is not set", "")
			}
			if strings.TrimSpace(d.User) == "" {
				result.addError("database.user", "user is required when dsn is not set", "")
			}
		}
	}

	if d.Port < 0 || d.Port > 65535 {
		result.addError("database.port", fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port), "use 0 for the driver default")
	}

	if !validSSLModes[strings.ToLower(strings.TrimSpace(d.SSLMode))] {
		result.addError("database.ssl_mode", fmt.Sprintf("unsupported ssl mode %q", d.SSLMode), "use disable, require, verify-ca, or verify-full")
	}

	if d.Password != "" && d.ConnectionString == "" {
		result.addWarning("database.password", "password set in plain configuration", "prefer database.password_file or database.password_prompt")
	}

	if d.Pool.MaxOpen < 0 {
		result.addError("database.pool.max_open", "max_open cannot be negative", "")
	}
	if d.Pool.MaxIdle < 0 {
		result.addError("database.pool.max_idle", "max_idle cannot be negative", "")
	}
	if d.Pool.MaxOpen > 0 && d.Pool.MaxIdle > d.Pool.MaxOpen {
		result.addWarning("database.pool.max_idle", "max_idle exceeds max_open", "database/sql caps idle connections at max_open")
	}

	if d.ConnectionTimeout < 0 {
		result.addError("database.connection_timeout", "connection_timeout cannot be negative", "")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval <= 0 {
		result.addError("database.connection_retry_interval", "connection_retry_interval must be positive when connection_timeout is set", "")
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.addError("server.port", fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port), "")
	}

	if s.DefaultLimit < 0 {
		result.addError("server.default_limit", "default_limit cannot be negative", "")
	}

	if s.SchemaRefreshInterval < 0 {
		result.addError("server.schema_refresh_interval", "schema_refresh_interval cannot be negative", "use 0 to disable polling")
	}

	if s.GraphiQLEnabled {
		result.addWarning("server.graphiql_enabled", "GraphiQL UI is enabled", "disable in production")
	}

	if s.Admin.SchemaReloadEnabled && strings.TrimSpace(s.Admin.AuthToken) == "" {
		result.addWarning("server.admin.auth_token", "schema reload endpoint is enabled without an auth token", "set server.admin.auth_token or server.admin.auth_token_file")
	}

	if s.ShutdownTimeout <= 0 {
		result.addError("server.shutdown_timeout", "shutdown_timeout must be positive", "")
	}
	if s.HealthCheckTimeout <= 0 {
		result.addError("server.health_check_timeout", "health_check_timeout must be positive", "")
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	if strings.TrimSpace(o.ServiceName) == "" {
		result.addError("observability.service_name", "service_name cannot be empty", "")
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.addError("observability.trace_sample_ratio", fmt.Sprintf("trace_sample_ratio %v must be between 0.0 and 1.0", o.TraceSampleRatio), "")
	}

	switch strings.ToLower(o.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result.addError("observability.logging.level", fmt.Sprintf("unsupported log level %q", o.Logging.Level), "use debug, info, warn, or error")
	}

	switch strings.ToLower(o.Logging.Format) {
	case "json", "text":
	default:
		result.addError("observability.logging.format", fmt.Sprintf("unsupported log format %q", o.Logging.Format), "use json or text")
	}

	if !o.TracingEnabled && !o.Logging.ExportsEnabled {
		return
	}

	if strings.TrimSpace(o.OTLP.Endpoint) == "" {
		result.addError("observability.otlp.endpoint", "OTLP endpoint is required when tracing or log export is enabled", "")
	}

	switch strings.ToLower(strings.TrimSpace(o.OTLP.Protocol)) {
	case "", "grpc", "http", "http/protobuf":
	default:
		result.addError("observability.otlp.protocol", fmt.Sprintf("unsupported OTLP protocol %q", o.OTLP.Protocol), "use grpc or http/protobuf")
	}

	switch o.OTLP.Compression {
	case "", "none", "gzip":
	default:
		result.addError("observability.otlp.compression", fmt.Sprintf("unsupported OTLP compression %q", o.OTLP.Compression), "use none or gzip")
	}

	if o.OTLP.Insecure && o.OTLP.TLSCertFile != "" {
		result.addWarning("observability.otlp.tls_cert_file", "tls_cert_file is ignored when insecure is true", "")
	}
}
