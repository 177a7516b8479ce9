package mergefield

import (
	"bytes"
	"io"
	"os"
)

// Engine prepares and caches templates. Use New to create one.
type Engine struct {
	config     *Config
	cache      *TemplateCache
	cacheSet   bool
	renderOpts []RenderOption
}

// New creates an engine using the global configuration and a cache sized by
// it.
func New(opts ...Option) *Engine {
	e := &Engine{config: GetGlobalConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if !e.cacheSet && e.config.CacheMaxSize > 0 {
		e.cache = NewTemplateCacheWithConfig(CacheConfig{
			MaxSize: e.config.CacheMaxSize,
			TTL:     e.config.CacheTTL,
		})
	}
	return e
}

// PrepareFile loads and validates a template from a file path.
func (e *Engine) PrepareFile(path string) (*PreparedTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	return e.prepareBytes(data)
}

// Prepare loads and validates a template from r.
func (e *Engine) Prepare(r io.Reader) (*PreparedTemplate, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, NewDocumentError("read", "", err)
	}
	return e.prepareBytes(buf.Bytes())
}

func (e *Engine) prepareBytes(data []byte) (*PreparedTemplate, error) {
	var key string
	if e.cache != nil {
		key = Key(data)
		if tmpl, ok := e.cache.Get(key); ok {
			Debug("template cache hit %s", truncate(key, 12))
			return tmpl, nil
		}
	}

	tmpl, err := prepare(data, e.config.FieldKeyword, e.renderOptions())
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, tmpl)
	}
	return tmpl, nil
}

// renderOptions are the engine defaults: the configured keyword, caption
// sequence and style strictness, then the options given to New.
func (e *Engine) renderOptions() []RenderOption {
	opts := []RenderOption{
		WithFieldKeyword(e.config.FieldKeyword),
		WithCaptionSequence(e.config.CaptionSequence),
		WithStrictStyles(e.config.StrictStyles),
	}
	return append(opts, e.renderOpts...)
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// ClearCache removes all templates from the cache.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// DefaultEngine is used by the package-level helpers.
var DefaultEngine = New()

// PrepareFile loads a template using the default engine.
func PrepareFile(path string) (*PreparedTemplate, error) {
	return DefaultEngine.PrepareFile(path)
}

// Prepare loads a template from r using the default engine.
func Prepare(r io.Reader) (*PreparedTemplate, error) {
	return DefaultEngine.Prepare(r)
}
