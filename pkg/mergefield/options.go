package mergefield

import (
	"github.com/benjaminschreck/go-mergefield/pkg/mergefield/xml"
)

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the engine configuration.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithCache sets the template cache used by PrepareFile. A nil cache
// disables caching.
func WithCache(cache *TemplateCache) Option {
	return func(e *Engine) {
		e.cache, e.cacheSet = cache, true
	}
}

// WithDefaultRenderOptions sets options applied to every Render call before
// the call's own options.
func WithDefaultRenderOptions(opts ...RenderOption) Option {
	return func(e *Engine) {
		e.renderOpts = append(e.renderOpts, opts...)
	}
}

// RenderOption configures a single evaluation.
type RenderOption func(*renderOptions)

type renderOptions struct {
	keyword      string
	sequence     string
	strictStyles bool
	styles       *xml.Styles
	providers    []ImageProvider
	logger       *Logger
}

func newRenderOptions(opts []RenderOption) *renderOptions {
	config := GetGlobalConfig()
	ro := &renderOptions{
		keyword:      config.FieldKeyword,
		sequence:     config.CaptionSequence,
		strictStyles: config.StrictStyles,
	}
	for _, opt := range opts {
		opt(ro)
	}
	if ro.logger == nil {
		ro.logger = GetLogger()
	}
	return ro
}

// WithImageProviders sets the providers consulted, in order, for the source
// of every <img> tag. The first non-nil image wins.
func WithImageProviders(providers ...ImageProvider) RenderOption {
	return func(o *renderOptions) {
		o.providers = append([]ImageProvider(nil), providers...)
	}
}

// WithStyles sets the style catalog that rich-text classes and headings are
// checked against. It defaults to the document's own styles.
func WithStyles(styles *xml.Styles) RenderOption {
	return func(o *renderOptions) {
		o.styles = styles
	}
}

// WithStrictStyles toggles the style catalog check.
func WithStrictStyles(strict bool) RenderOption {
	return func(o *renderOptions) {
		o.strictStyles = strict
	}
}

// WithCaptionSequence names the SEQ field used to number image captions.
func WithCaptionSequence(name string) RenderOption {
	return func(o *renderOptions) {
		o.sequence = name
	}
}

// WithFieldKeyword sets the field code that marks template commands.
func WithFieldKeyword(keyword string) RenderOption {
	return func(o *renderOptions) {
		o.keyword = keyword
	}
}

// WithLogger routes evaluation warnings to logger instead of the global one.
func WithLogger(logger *Logger) RenderOption {
	return func(o *renderOptions) {
		o.logger = logger
	}
}
