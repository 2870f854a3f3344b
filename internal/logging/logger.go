// Package logging provides the leveled, optionally colored run log.
//
// Output goes to stdout (errors to stderr) and, when a log file is
// configured, to that file as plain text. Workers of a multi-threaded run
// write their file output to numbered part files that the coordinator
// joins after all workers are done, so lines of one file never interleave
// with another's.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/data-bridge/bridgeflow/internal/config"
	"github.com/data-bridge/bridgeflow/internal/term"
)

// successLevel has no zap name of its own; the level encoder renders it as
// SUCCESS. Every core enables it.
const successLevel = zapcore.Level(-2)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	z        *zap.Logger
	console  zapcore.Core // Shared by every worker logger.
	color    bool
	file     *os.File
	filePath string
}

// NewLogger configures colors from cfg and optionally opens cfg.LogFile.
// Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	return newLogger(zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr), term.Enabled(), cfg.LogFile)
}

func newLogger(out, errOut zapcore.WriteSyncer, color bool, logFile string) (*Logger, error) {
	consoleEnc := zapcore.NewConsoleEncoder(encoderConfig(color))
	console := zapcore.NewTee(
		zapcore.NewCore(consoleEnc, out, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l < zapcore.ErrorLevel
		})),
		zapcore.NewCore(consoleEnc, errOut, zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})),
	)

	l := &Logger{console: console, color: color}
	if logFile != "" {
		f, err := openAppend(logFile)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = logFile
	}
	l.z = zap.New(l.core())
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func (l *Logger) core() zapcore.Core {
	if l.file == nil {
		return l.console
	}
	fileCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(false)),
		zapcore.AddSync(l.file),
		zap.LevelEnablerFunc(func(zapcore.Level) bool { return true }),
	)
	return zapcore.NewTee(l.console, fileCore)
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "worker",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeLevel:      levelEncoder(color),
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
}

func levelName(l zapcore.Level) string {
	switch l {
	case successLevel:
		return "SUCCESS"
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARN"
	}
	return l.CapitalString()
}

func levelColor(l zapcore.Level) term.Color {
	switch l {
	case successLevel:
		return term.Green
	case zapcore.DebugLevel:
		return term.Cyan
	case zapcore.InfoLevel:
		return term.Blue
	case zapcore.WarnLevel:
		return term.Yellow
	}
	return term.Red
}

func levelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		tag := "[" + levelName(l) + "]"
		if color {
			tag = levelColor(l).Wrap(tag)
		}
		enc.AppendString(tag)
	}
}

// ForWorker returns the logger of worker i. With a log file, the worker
// writes its file output to "<log>.<i>"; the console is shared. Without a
// log file the worker only gets a name prefix.
func (l *Logger) ForWorker(i int) (*Logger, error) {
	name := "w" + strconv.Itoa(i)
	w := &Logger{console: l.console, color: l.color}
	if l.file != nil {
		part := l.filePath + "." + strconv.Itoa(i)
		if err := os.Remove(part); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		f, err := openAppend(part)
		if err != nil {
			return nil, err
		}
		w.file = f
		w.filePath = part
	}
	w.z = zap.New(w.core()).Named(name)
	return w, nil
}

// JoinWorkers closes every worker logger and appends their part files to
// this logger's file in the given order, removing the parts. It is a no-op
// for workers without a file.
func (l *Logger) JoinWorkers(workers []*Logger) error {
	var parts []string
	for _, w := range workers {
		if w == nil || w == l {
			continue
		}
		if err := w.Close(); err != nil {
			return err
		}
		if w.filePath != "" {
			parts = append(parts, w.filePath)
		}
	}
	if l.file == nil || len(parts) == 0 {
		return nil
	}
	_ = l.z.Sync()
	return Concatenate(l.file, parts)
}

// Concatenate copies every part file to dst in order and removes it.
func Concatenate(dst io.Writer, parts []string) error {
	for _, p := range parts {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(dst, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("append %s: %w", p, err)
		}
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the log file if one was opened.
func (l *Logger) Close() error {
	_ = l.z.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level zapcore.Level, format string, args []interface{}) {
	if ce := l.z.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(zapcore.InfoLevel, format, args)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.log(successLevel, format, args)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(zapcore.WarnLevel, format, args)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(zapcore.ErrorLevel, format, args)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.log(zapcore.DebugLevel, format, args)
}
