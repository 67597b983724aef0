package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"curator/internal/asset"
	"curator/internal/logging"
	"curator/internal/media"
)

// Operator transforms one asset into a new one. Operators are configured
// once, reusable across assets, and must never mutate their input; failures
// come back as errors tagged with the media sentinels.
type Operator func(ctx context.Context, a *asset.Asset) (*asset.Asset, error)

// Pipeline applies an ordered chain of operators to assets. Operators run in
// the order they were added; work happens lazily while the caller iterates
// the Results.
type Pipeline struct {
	logger    *slog.Logger
	operators []Operator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger routes pipeline diagnostics to the supplied logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logging.WithComponent(logger, "pipeline")
		}
	}
}

// New builds an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add appends an operator to the chain.
func (p *Pipeline) Add(op Operator) {
	if op == nil {
		return
	}
	p.operators = append(p.operators, op)
}

// Len reports the number of operators in the chain.
func (p *Pipeline) Len() int {
	return len(p.operators)
}

// Process prepares a lazy pass of the inputs through the operator chain.
// Nothing runs until the caller advances the returned Results; inputs after
// the first failure are never touched.
func (p *Pipeline) Process(ctx context.Context, assets ...*asset.Asset) *Results {
	return &Results{
		ctx:      ctx,
		pipeline: p,
		inputs:   slices.Clone(assets),
	}
}

func (p *Pipeline) apply(ctx context.Context, in *asset.Asset) (*asset.Asset, error) {
	current := in
	for idx, op := range p.operators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := op(ctx, current)
		if err != nil {
			p.logger.Debug("operator failed",
				logging.FieldOperator, idx,
				logging.FieldMIMEType, current.MIMEType(),
				logging.FieldError, err.Error())
			return nil, operatorError(idx, current, err)
		}
		if next == nil {
			return nil, media.Wrap(media.ErrOperator, "pipeline",
				fmt.Sprintf("operator %d", idx), "operator returned no asset", nil)
		}
		current = next
	}
	p.logger.Debug("asset processed",
		logging.FieldMIMEType, current.MIMEType(),
		"operators", len(p.operators))
	return current, nil
}

// operatorError adds chain position and source type to an operator failure.
// Errors already tagged with a media sentinel keep their classification;
// anything else is marked as an operator failure.
func operatorError(idx int, in *asset.Asset, err error) error {
	detail := fmt.Sprintf("operator %d on %s", idx, in.MIMEType())
	for _, marker := range []error{
		media.ErrUnsupportedFormat,
		media.ErrValidation,
		media.ErrOperator,
		media.ErrStorage,
		media.ErrNoMetadata,
	} {
		if errors.Is(err, marker) {
			return fmt.Errorf("%s: %w", detail, err)
		}
	}
	return media.Wrap(media.ErrOperator, "pipeline", detail, "", err)
}

// Results iterates processed assets one at a time, in input order. Advance
// with Next, fetch with Asset, and check Err once Next reports false. A
// Results is single use; call Process again for another pass.
type Results struct {
	ctx      context.Context
	pipeline *Pipeline
	inputs   []*asset.Asset
	pos      int
	current  *asset.Asset
	err      error
	done     bool
}

// Next computes the next output. It returns false once inputs are exhausted,
// an operator fails, or the context ends.
func (r *Results) Next() bool {
	if r.done {
		return false
	}
	if r.pos >= len(r.inputs) {
		r.done = true
		return false
	}
	if err := r.ctx.Err(); err != nil {
		r.err = err
		r.done = true
		return false
	}
	in := r.inputs[r.pos]
	r.pos++
	if in == nil {
		r.err = media.Wrap(media.ErrValidation, "pipeline", "process",
			fmt.Sprintf("input %d is nil", r.pos-1), nil)
		r.done = true
		return false
	}
	out, err := r.pipeline.apply(r.ctx, in)
	if err != nil {
		r.err = err
		r.done = true
		return false
	}
	r.current = out
	return true
}

// Asset returns the most recent output produced by Next.
func (r *Results) Asset() *asset.Asset {
	return r.current
}

// Err reports the failure that stopped iteration, if any.
func (r *Results) Err() error {
	return r.err
}

// Collect drains the remaining results into a slice. On failure it returns
// the outputs produced so far along with the error.
func (r *Results) Collect() ([]*asset.Asset, error) {
	var out []*asset.Asset
	for r.Next() {
		out = append(out, r.Asset())
	}
	return out, r.Err()
}
