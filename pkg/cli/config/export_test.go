package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewStoreForTest creates a Store config for testing purposes
func NewStoreForTest(backend, path, bootstrap string) *Store {
	return &Store{
		backend:   backend,
		path:      path,
		bootstrap: bootstrap,
	}
}

// NewTrackerForTest creates a Tracker config for testing purposes
func NewTrackerForTest(baseURL string) *Tracker {
	return &Tracker{
		baseURL: baseURL,
	}
}
