package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component
	// names. The console handler folds it into the message prefix.
	FieldComponent = "component"
	// FieldFormat is the standardized structured logging key for metadata
	// format names.
	FieldFormat = "format"
	// FieldMIMEType is the standardized structured logging key for asset MIME
	// types.
	FieldMIMEType = "mime_type"
	// FieldOperator is the standardized structured logging key for pipeline
	// operator positions.
	FieldOperator = "operator"
	// FieldReadID is the standardized structured logging key for per-read
	// correlation identifiers.
	FieldReadID = "read_id"
	// FieldAssetID is the standardized structured logging key for storage
	// identifiers.
	FieldAssetID = "asset_id"
	// FieldPath is the standardized structured logging key for filesystem
	// paths.
	FieldPath = "path"
	// FieldError is the standardized structured logging key for error text.
	FieldError = "error"
)

// NewNop returns a logger that discards everything. Components accept it as a
// safe default so callers never need nil checks before logging.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// WithComponent returns the logger augmented with a component attribute,
// falling back to a no-op logger when the base is nil.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
