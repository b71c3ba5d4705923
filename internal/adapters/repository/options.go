package repository

// Option applies a configuration option to the LogStore.
type Option func(*LogStore)

// WithInitial seeds the store with a previously built log.
func WithInitial(c *CachedLog) Option {
	return func(s *LogStore) {
		if c != nil && c.Log != nil {
			s.current.Store(c)
		}
	}
}
