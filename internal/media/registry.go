package media

import (
	"fmt"
	"log/slog"
	"slices"

	"curator/internal/asset"
	"curator/internal/logging"
)

// Registry holds the processors and metadata processors reads dispatch
// against. Registration order is dispatch priority: the first processor whose
// CanRead claims a stream wins, and metadata extraction runs in the order
// processors were registered.
//
// A Registry is not safe for concurrent registration. Register everything
// during initialization, then share it freely; reads only take snapshots.
type Registry struct {
	logger     *slog.Logger
	processors []Processor
	metadata   []MetadataProcessor
	byFormat   map[string]MetadataProcessor
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger routes registry diagnostics to the supplied logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logging.WithComponent(logger, "registry")
		}
	}
}

// NewRegistry builds an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:   logging.NewNop(),
		byFormat: make(map[string]MetadataProcessor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a processor to the dispatch list.
func (r *Registry) Register(p Processor) error {
	if p == nil {
		return Wrap(ErrValidation, "registry", "register", "nil processor", nil)
	}
	r.processors = append(r.processors, p)
	r.logger.Debug("processor registered", "mime_types", p.MIMETypes())
	return nil
}

// RegisterMetadata appends a metadata processor. Format names must be unique
// and may not shadow the reserved attribute namespace.
func (r *Registry) RegisterMetadata(mp MetadataProcessor) error {
	if mp == nil {
		return Wrap(ErrValidation, "registry", "register metadata", "nil metadata processor", nil)
	}
	format := mp.Format()
	if format == "" {
		return Wrap(ErrValidation, "registry", "register metadata", "empty format name", nil)
	}
	if format == asset.ReservedNamespace {
		return Wrap(ErrValidation, "registry", "register metadata",
			fmt.Sprintf("format name %q is reserved", format), nil)
	}
	if _, exists := r.byFormat[format]; exists {
		return Wrap(ErrValidation, "registry", "register metadata",
			fmt.Sprintf("format %q already registered", format), nil)
	}
	r.metadata = append(r.metadata, mp)
	r.byFormat[format] = mp
	r.logger.Debug("metadata processor registered", logging.FieldFormat, format)
	return nil
}

// Processors returns the registered processors in dispatch order.
func (r *Registry) Processors() []Processor {
	return slices.Clone(r.processors)
}

// ProcessorFor returns the first registered processor declaring the MIME
// type.
func (r *Registry) ProcessorFor(mimeType string) (Processor, bool) {
	for _, p := range r.processors {
		if slices.Contains(p.MIMETypes(), mimeType) {
			return p, true
		}
	}
	return nil, false
}

// MetadataFormats lists registered metadata format names in registration
// order.
func (r *Registry) MetadataFormats() []string {
	formats := make([]string, 0, len(r.metadata))
	for _, mp := range r.metadata {
		formats = append(formats, mp.Format())
	}
	return formats
}

// MetadataProcessor returns the processor registered for the format.
func (r *Registry) MetadataProcessor(format string) (MetadataProcessor, bool) {
	mp, ok := r.byFormat[format]
	return mp, ok
}
