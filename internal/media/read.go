package media

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"curator/internal/asset"
	"curator/internal/logging"
)

type readOptions struct {
	mimeHint string
}

// ReadOption adjusts a single Read call.
type ReadOption func(*readOptions)

// WithMIMEHint records the caller's expectation of the stream's type. The
// hint only enriches diagnostics and unsupported-format errors; processor
// selection always follows registration order.
func WithMIMEHint(mimeType string) ReadOption {
	return func(o *readOptions) {
		o.mimeHint = mimeType
	}
}

// Read turns a stream into an asset. Processors are probed in registration
// order and the first claimant decodes the base asset; every registered
// metadata processor then gets a rewound pass at the stream, and extraction
// failures leave that namespace absent without failing the read. The stream
// position after Read is unspecified.
func (r *Registry) Read(ctx context.Context, src io.ReadSeeker, opts ...ReadOption) (*asset.Asset, error) {
	if src == nil {
		return nil, Wrap(ErrValidation, "registry", "read", "nil source stream", nil)
	}
	var options readOptions
	for _, opt := range opts {
		opt(&options)
	}
	readID := uuid.NewString()

	proc, err := r.selectProcessor(ctx, src, options)
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, Wrap(ErrValidation, "registry", "read", "rewind before decode", err)
	}
	a, err := proc.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("asset decoded",
		logging.FieldReadID, readID,
		logging.FieldMIMEType, a.MIMEType(),
		"size", a.Size())

	for _, mp := range r.metadata {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, Wrap(ErrValidation, "registry", "read", "rewind before metadata pass", err)
		}
		ns, err := mp.Read(ctx, src)
		if err != nil {
			// Extraction trouble in one format never invalidates the asset;
			// the namespace simply stays absent.
			r.logger.Debug("metadata extraction skipped",
				logging.FieldReadID, readID,
				logging.FieldFormat, mp.Format(),
				logging.FieldError, err.Error())
			continue
		}
		a = a.WithNamespace(mp.Format(), ns)
	}
	return a, nil
}

// ReadFile opens path and reads it through the registry.
func (r *Registry) ReadFile(ctx context.Context, path string, opts ...ReadOption) (*asset.Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap(ErrValidation, "registry", "read file", fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()
	return r.Read(ctx, f, opts...)
}

func (r *Registry) selectProcessor(ctx context.Context, src io.ReadSeeker, options readOptions) (Processor, error) {
	for _, proc := range r.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return nil, Wrap(ErrValidation, "registry", "read", "rewind before probe", err)
		}
		if proc.CanRead(ctx, src) {
			return proc, nil
		}
	}
	message := "no registered processor recognizes the stream"
	if options.mimeHint != "" {
		message = fmt.Sprintf("%s (hint %q)", message, options.mimeHint)
	}
	return nil, Wrap(ErrUnsupportedFormat, "registry", "read", message, nil)
}
