// Package progress carries the cooperative cancellation flag and progress
// callbacks of an import pass.
package progress

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Signal is a cooperative cancellation flag. Loops poll it between items;
// it never interrupts work already running.
type Signal struct {
	cancelled atomic.Bool
}

// Cancel raises the flag. It is safe to call from any goroutine.
func (s *Signal) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether the flag was raised. A nil signal is never cancelled.
func (s *Signal) Cancelled() bool {
	return s != nil && s.cancelled.Load()
}

// Reporter receives progress for each stage of a pass.
type Reporter interface {
	// Stage is called when a stage starts with the number of items it will visit.
	Stage(name string, total int)
	// Step is called after each item of the current stage.
	Step(stage, item string, done, total int)
}

// Nop discards progress.
type Nop struct{}

func (Nop) Stage(string, int) {}
func (Nop) Step(string, string, int, int) {}

// Logger reports progress through zap at debug level.
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a zap backed reporter.
func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Stage(name string, total int) {
	l.log.Info("stage started", zap.String("stage", name), zap.Int("total", total))
}

func (l *Logger) Step(stage, item string, done, total int) {
	l.log.Debug("stage progress",
		zap.String("stage", stage),
		zap.String("element", item),
		zap.Int("done", done),
		zap.Int("total", total),
	)
}

// Func adapts plain functions to a Reporter. Nil fields are skipped.
type Func struct {
	OnStage func(name string, total int)
	OnStep  func(stage, item string, done, total int)
}

func (f Func) Stage(name string, total int) {
	if f.OnStage != nil {
		f.OnStage(name, total)
	}
}

func (f Func) Step(stage, item string, done, total int) {
	if f.OnStep != nil {
		f.OnStep(stage, item, done, total)
	}
}
