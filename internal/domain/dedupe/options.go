package dedupe

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds how many ids are remembered. Once full the oldest id is
// forgotten first. maxSize <= 0 keeps every id.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
