package ports

// Watcher monitors a single file (the config file) for changes.
// The adapter watches the parent directory so that editors which save by
// rename are still observed. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called with path after each
	// debounced write, create or rename. The callback may be invoked from
	// any goroutine. Returns an error if the parent directory doesn't exist.
	Watch(path string, onChange func(path string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
