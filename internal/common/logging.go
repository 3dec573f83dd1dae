// Package common provides the logger shared by the api2mcp binaries.
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

const (
	defaultLogFile    = "logs/api2mcp.log"
	defaultMaxSize    = 500 * 1024
	defaultMaxBackups = 20
)

// LoggingConfig holds logging configuration. Format selects the file
// layout: "json", or "text"/"logfmt" for key=value lines.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Logger wraps arbor.ILogger so correlation ids keep the wrapper type.
type Logger struct {
	arbor.ILogger
}

// discardWriter drops everything, so a silent logger never reaches the
// globally registered writers.
type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// lineWriter renders arbor's JSON events as "message k=v ..." lines with
// the fields sorted, which keeps CLI and test output stable.
type lineWriter struct {
	out   io.Writer
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}

	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(evt.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, evt.Fields[k])
	}
	if evt.Error != "" {
		fmt.Fprintf(&b, " error=%s", evt.Error)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }

// NewLogger creates a stderr logger at the given level.
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(LoggingConfig{Level: level})
}

// NewLoggerFromConfig creates a logger for the configured outputs, console
// (stderr) and file. Unknown outputs are ignored; no outputs means console.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch strings.ToLower(strings.TrimSpace(out)) {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: time.RFC3339,
			})
		case "file":
			l = l.WithFileWriter(fileWriterConfig(cfg))
		}
	}
	return &Logger{ILogger: l.WithLevelFromString(level)}
}

func fileWriterConfig(cfg LoggingConfig) models.WriterConfiguration {
	wc := models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   cfg.FilePath,
		MaxSize:    int64(cfg.MaxSizeMB) * 1024 * 1024,
		MaxBackups: cfg.MaxBackups,
		TimeFormat: time.RFC3339,
		OutputType: outputFormat(cfg.Format),
	}
	if wc.FileName == "" {
		wc.FileName = defaultLogFile
	}
	if wc.MaxSize <= 0 {
		wc.MaxSize = defaultMaxSize
	}
	if wc.MaxBackups <= 0 {
		wc.MaxBackups = defaultMaxBackups
	}
	return wc
}

func outputFormat(format string) models.OutputFormat {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return models.OutputFormatJSON
	}
	return models.OutputFormatLogfmt
}

// NewLoggerWithOutput creates a logger writing lines to w. The writer is
// also registered as arbor's console writer.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	lw := &lineWriter{out: w, level: log.TraceLevel}
	arbor.RegisterWriter(arbor.WRITER_CONSOLE, lw)

	l := arbor.NewLogger().
		WithWriters([]writers.IWriter{lw}).
		WithLevelFromString(level)
	return &Logger{ILogger: l}
}

// NewSilentLogger creates a logger that discards all output.
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewLogger().WithWriters([]writers.IWriter{&discardWriter{}})}
}

// WithCorrelationId returns a Logger tagged with id.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
