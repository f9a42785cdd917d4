package report

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Log writes every event as a structured log line.
type Log struct {
	l *zap.Logger
}

// NewLog returns a reporter logging through l.
func NewLog(l *zap.Logger) *Log {
	if l == nil {
		l = zap.NewNop()
	}
	return &Log{l: l}
}

func (r *Log) Progress(label string, f float64) {
	r.l.Info(label, zap.String("progress", fmt.Sprintf("%.0f%%", f*100)))
}

func (r *Log) Notice(title, detail string) {
	r.l.Info(title, zap.String("detail", detail))
}

func (r *Log) Warning(title, detail string) {
	r.l.Warn(title, zap.String("detail", detail))
}

func (r *Log) Error(title, detail string, persist time.Duration) {
	fields := []zap.Field{zap.String("detail", detail)}
	if persist > 0 {
		fields = append(fields, zap.Duration("persist", persist))
	}
	r.l.Error(title, fields...)
}
