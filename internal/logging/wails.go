package logging

import (
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/logger"
)

// WailsLogger routes Wails framework logs into slog.
type WailsLogger struct {
	l *slog.Logger
}

var _ logger.Logger = (*WailsLogger)(nil)

// NewWailsLogger wraps l, tagging records with component=wails.
func NewWailsLogger(l *slog.Logger) *WailsLogger {
	return &WailsLogger{l: l.With(slog.String("component", "wails"))}
}

func (w *WailsLogger) Print(message string)   { w.l.Info(message) }
func (w *WailsLogger) Trace(message string)   { w.l.Debug(message) }
func (w *WailsLogger) Debug(message string)   { w.l.Debug(message) }
func (w *WailsLogger) Info(message string)    { w.l.Info(message) }
func (w *WailsLogger) Warning(message string) { w.l.Warn(message) }
func (w *WailsLogger) Error(message string)   { w.l.Error(message) }
func (w *WailsLogger) Fatal(message string)   { w.l.Error(message, slog.Bool("fatal", true)) }

// WailsLevel maps a level name onto the Wails log level.
func WailsLevel(s string) logger.LogLevel {
	switch ParseLevel(s) {
	case slog.LevelDebug:
		return logger.DEBUG
	case slog.LevelWarn:
		return logger.WARNING
	case slog.LevelError:
		return logger.ERROR
	default:
		return logger.INFO
	}
}
