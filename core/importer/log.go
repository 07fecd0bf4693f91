package importer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Severity classifies a log entry.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// MarshalText renders the severity by name in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is one message of the import log.
type Entry struct {
	Severity Severity `json:"severity"`
	Stage    string   `json:"stage"`
	Element  string   `json:"element,omitempty"`
	Message  string   `json:"message"`
}

// Log aggregates per-item messages of a pass and mirrors them to zap.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	logger  *zap.Logger
}

// NewLog creates a log writing through logger.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

func (l *Log) add(sev Severity, stage, element, format string, args ...any) {
	e := Entry{Severity: sev, Stage: stage, Element: element, Message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	fields := []zap.Field{zap.String("stage", stage)}
	if element != "" {
		fields = append(fields, zap.String("element", element))
	}
	switch sev {
	case SeverityError:
		l.logger.Error(e.Message, fields...)
	case SeverityWarning:
		l.logger.Warn(e.Message, fields...)
	default:
		l.logger.Info(e.Message, fields...)
	}
}

// Info records an informational message.
func (l *Log) Info(stage, element, format string, args ...any) {
	l.add(SeverityInfo, stage, element, format, args...)
}

// Warn records an advisory or per-item warning.
func (l *Log) Warn(stage, element, format string, args ...any) {
	l.add(SeverityWarning, stage, element, format, args...)
}

// Error records a per-item failure.
func (l *Log) Error(stage, element, format string, args ...any) {
	l.add(SeverityError, stage, element, format, args...)
}

// Entries returns a copy of every entry.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Filter returns the entries with at least the given severity.
func (l *Log) Filter(min Severity) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Severity >= min {
			out = append(out, e)
		}
	}
	return out
}

// ForElement returns the entries logged for element.
func (l *Log) ForElement(element string) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Element == element {
			out = append(out, e)
		}
	}
	return out
}
