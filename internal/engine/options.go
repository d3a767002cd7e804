package engine

// Option configures an Engine at open time.
type Option func(*Engine)

// WithFileNameIndexing makes image and file items contribute their display
// name (path basename) to the search index. Off by default, in which case
// search never returns image or file items.
func WithFileNameIndexing() Option {
	return func(e *Engine) {
		e.indexFileNames = true
	}
}

// WithSearchCacheSize overrides the number of cached search results.
func WithSearchCacheSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cacheSize = size
		}
	}
}
