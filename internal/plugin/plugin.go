package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/payload"
)

// Plugin defines the interface that all analysis plugins implement.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows plugins to carry configuration state
// 2. Name() is the plugin identity formatters are registered under
type Plugin interface {
	// Name returns the plugin identity. It must be unique within a run.
	Name() string

	// Run analyses scan and returns the plugin's payload. The scan is
	// shared and must not be modified.
	Run(ctx context.Context, scan *model.Scan) (payload.Value, error)
}

// Pipeline runs plugins in order and collects their results.
type Pipeline struct {
	plugins []Plugin

	logger *slog.Logger

	// continueOnError keeps running later plugins after one fails.
	continueOnError bool

	// external controls whether payloads recorded in the snapshot are
	// appended after the built-in results.
	external bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures whether a failing plugin stops the run.
// The default is to continue: a failed analysis only loses its own report
// section, and the remaining plugins still have something to say.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// WithExternalResults configures whether payloads recorded under plugins:
// in the snapshot are added to the results. Enabled by default.
func WithExternalResults(enabled bool) Option {
	return func(p *Pipeline) {
		p.external = enabled
	}
}

// NewPipeline creates a pipeline running plugins in the given order.
func NewPipeline(plugins []Plugin, opts ...Option) *Pipeline {
	p := &Pipeline{
		plugins:         plugins,
		continueOnError: true,
		external:        true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Names returns the plugin identities in execution order.
func (p *Pipeline) Names() []string {
	return Names(p.plugins)
}

// Run executes every plugin against scan.
//
// Plugin failures are logged and, when continuing on error, leave no
// result for that plugin. The returned error is non-nil when ctx is
// cancelled, when a plugin fails and the pipeline stops on error, or when
// two plugins share an identity. Results gathered before the error are
// returned with it.
func (p *Pipeline) Run(ctx context.Context, scan *model.Scan) (*model.PluginResults, error) {
	results := model.NewPluginResults()

	for _, pl := range p.plugins {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("plugin run cancelled", "plugin", pl.Name(), "reason", err)
			return results, err
		}

		p.logger.Debug("running plugin", "plugin", pl.Name(), "target", scan.Target)

		v, err := pl.Run(ctx, scan)
		if err != nil {
			p.logger.Error("plugin failed", "plugin", pl.Name(), "target", scan.Target, "error", err)
			if !p.continueOnError {
				return results, fmt.Errorf("plugin %s: %w", pl.Name(), err)
			}
			continue
		}
		if err := results.Add(pl.Name(), v); err != nil {
			return results, err
		}
	}

	if p.external {
		p.addExternal(results, scan)
	}
	return results, nil
}

// addExternal appends snapshot-recorded payloads whose identity no built-in
// plugin produced.
func (p *Pipeline) addExternal(results *model.PluginResults, scan *model.Scan) {
	for _, ext := range scan.Plugins {
		err := results.Add(ext.Name, ext.Result)
		switch {
		case errors.Is(err, model.ErrDuplicatePlugin):
			p.logger.Debug("snapshot result shadowed by plugin", "plugin", ext.Name)
		case err != nil:
			p.logger.Warn("snapshot result ignored", "plugin", ext.Name, "error", err)
		}
	}
}
