// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager records every entry on a channel instead of a file.
// It implements LoggerProvider.
type TestLogManager struct {
	sink    *ChannelSink
	baseZap *zap.Logger
	loggers map[string]*ScopedLogger
	mu      sync.Mutex
}

// NewTestLogManager creates a TestLogManager buffering up to bufferSize entries
// at debug level.
func NewTestLogManager(bufferSize int) *TestLogManager {
	sink := NewChannelSink(bufferSize)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)

	return &TestLogManager{
		sink:    sink,
		baseZap: zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns the cached logger for scope.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if logger, ok := m.loggers[scope]; ok {
		return logger
	}
	logger := newScopedLogger(m.baseZap, scope, zapcore.DebugLevel)
	m.loggers[scope] = logger
	return logger
}

// Channel returns the channel for receiving log entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Drain returns the entries buffered so far without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var entries []LogEntry
	for {
		select {
		case entry, ok := <-m.sink.Entries():
			if !ok {
				return entries
			}
			entries = append(entries, entry)
		default:
			return entries
		}
	}
}

// Close closes the entry channel.
func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
