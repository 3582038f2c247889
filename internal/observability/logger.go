package observability

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger пишет структурированные key/value логи в файл с ротацией и, опционально, в stderr
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
	closer   io.Closer
}

type Options struct {
	LogPath       string
	LogLevel      string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	ConsoleOutput bool
}

func NewLogger(opts Options) (*Logger, error) {
	lvl := new(slog.LevelVar)
	lvl.Set(parseLevel(opts.LogLevel))

	var writers []io.Writer
	var closer io.Closer

	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, rotator)
		closer = rotator
	}
	if opts.ConsoleOutput || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: lvl})

	return &Logger{
		internal: slog.New(handler),
		level:    lvl,
		closer:   closer,
	}, nil
}

// NewNopLogger логгер для тестов, всё отбрасывается
func NewNopLogger() *Logger {
	lvl := new(slog.LevelVar)
	return &Logger{
		internal: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: lvl})),
		level:    lvl,
	}
}

// SetLevel меняет уровень на лету, действует и на дочерние логгеры из With
func (l *Logger) SetLevel(level string) {
	l.level.Set(parseLevel(level))
}

// Enabled пишет ли логгер сообщения уровня level
func (l *Logger) Enabled(level string) bool {
	return l.level.Level() <= parseLevel(level)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(msg string, fields ...any) {
	l.internal.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...any) {
	l.internal.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...any) {
	l.internal.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...any) {
	l.internal.Error(msg, fields...)
}

// With возвращает дочерний логгер с постоянными полями
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{
		internal: l.internal.With(fields...),
		level:    l.level,
	}
}

// Close закрывает файл ротации
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
