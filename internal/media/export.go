package media

import (
	"context"
	"fmt"

	"curator/internal/asset"
	"curator/internal/logging"
)

type exportOptions struct {
	skipUnembeddable bool
}

// ExportOption adjusts a single Export call.
type ExportOption func(*exportOptions)

// SkipUnembeddable makes Export silently leave out namespaces whose
// processors cannot re-embed, instead of failing.
func SkipUnembeddable() ExportOption {
	return func(o *exportOptions) {
		o.skipUnembeddable = true
	}
}

// Export rebuilds file bytes from an asset by splicing every metadata
// namespace back into the essence. When the asset came straight from Read
// and was not modified, the result is byte-identical to the original input
// for formats whose processors implement Embedder. Namespaces without an
// embed-capable processor fail the export unless SkipUnembeddable is set.
func (r *Registry) Export(ctx context.Context, a *asset.Asset, opts ...ExportOption) ([]byte, error) {
	if a == nil {
		return nil, Wrap(ErrValidation, "registry", "export", "nil asset", nil)
	}
	var options exportOptions
	for _, opt := range opts {
		opt(&options)
	}

	essence := a.EssenceBytes()
	for _, name := range a.Namespaces() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mp, ok := r.byFormat[name]
		if !ok {
			if options.skipUnembeddable {
				continue
			}
			return nil, Wrap(ErrUnsupportedFormat, "registry", "export",
				fmt.Sprintf("no processor registered for namespace %q", name), nil)
		}
		embedder, ok := mp.(Embedder)
		if !ok {
			if options.skipUnembeddable {
				continue
			}
			return nil, Wrap(ErrUnsupportedFormat, "registry", "export",
				fmt.Sprintf("format %q cannot re-embed metadata", name), nil)
		}
		ns, _ := a.Namespace(name)
		rebuilt, err := embedder.Embed(ctx, essence, ns)
		if err != nil {
			return nil, err
		}
		essence = rebuilt
		r.logger.Debug("namespace embedded",
			logging.FieldFormat, name,
			"size", len(essence))
	}
	return essence, nil
}
