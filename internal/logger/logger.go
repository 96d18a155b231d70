package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/l-bnp/audioproc/internal/dsp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	instance *Logger
	once     sync.Once
)

type Logger struct {
	logger     zerolog.Logger
	mu         sync.RWMutex
	level      zerolog.Level
	outputs    []io.Writer
	fileWriter *lumberjack.Logger
}

type Config struct {
	Level      string `json:"level"`
	Console    bool   `json:"console"`
	File       bool   `json:"file"`
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // megabytes
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
	JSONFormat bool   `json:"json_format"`
	Caller     bool   `json:"caller"`
}

func Get() *Logger {
	once.Do(func() {
		instance = &Logger{}
		instance.initialize(DefaultConfig())
	})
	return instance
}

func Initialize(cfg Config) {
	Get().initialize(cfg)
}

func DefaultConfig() Config {
	dataDir := getDataDir()
	return Config{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(dataDir, "logs", "audioproc.log"),
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
		JSONFormat: false,
		Caller:     true,
	}
}

func (l *Logger) initialize(cfg Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	l.level = level

	l.outputs = []io.Writer{}

	if cfg.Console {
		var consoleWriter io.Writer
		if cfg.JSONFormat {
			consoleWriter = os.Stdout
		} else {
			consoleWriter = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: "15:04:05",
				FormatLevel: func(i interface{}) string {
					return strings.ToUpper(fmt.Sprintf("%-5s", i))
				},
				FormatMessage: func(i interface{}) string {
					return fmt.Sprintf("%s", i)
				},
				FormatFieldName: func(i interface{}) string {
					return fmt.Sprintf("%s:", i)
				},
				FormatFieldValue: func(i interface{}) string {
					return fmt.Sprintf("%s", i)
				},
			}
		}
		l.outputs = append(l.outputs, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
		}

		l.fileWriter = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		l.outputs = append(l.outputs, l.fileWriter)
	}

	multi := zerolog.MultiLevelWriter(l.outputs...)

	l.logger = zerolog.New(multi).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.Caller {
		l.logger = l.logger.With().Caller().Logger()
	}

	log.Logger = l.logger
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event := l.logger.Info()
	for _, field := range fields {
		event = field.Apply(event)
	}
	event.Msg(msg)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event := l.logger.Warn()
	for _, field := range fields {
		event = field.Apply(event)
	}
	event.Msg(msg)
}

// ErrorLog logs at error level. It is named ErrorLog, not Error, because
// Error is already the name of the Field constructor that wraps a Go
// error — a package can't export two identifiers with the same name, and
// every call site here needs both (a message plus an error field).
func (l *Logger) ErrorLog(msg string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event := l.logger.Error()
	for _, field := range fields {
		event = field.Apply(event)
	}
	event.Msg(msg)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event := l.logger.Fatal()
	for _, field := range fields {
		event = field.Apply(event)
	}
	event.Msg(msg)
}

// Close flushes and closes the rotating log file, if one is open.
// Callers running a long-lived process (cmd/audioproc) should defer this
// right after Initialize so buffered log lines aren't lost on shutdown.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileWriter != nil {
		return l.fileWriter.Close()
	}
	return nil
}

type Field struct {
	Key   string
	Value interface{}
}

func (f Field) Apply(event *zerolog.Event) *zerolog.Event {
	return event.Interface(f.Key, f.Value)
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// Channel tags a log line with the (side, index) a gain/mute/equalizer/
// mixer-route event addresses, using the "input[1]"-shaped text of
// Address.String().
func Channel(addr dsp.Address) Field {
	return Field{Key: "channel", Value: addr.String()}
}

// Side is for log sites that only know a Side, not a full Address (for
// example a get_meter request before any channel index is resolved).
func Side(side dsp.Side) Field {
	return Field{Key: "side", Value: string(side)}
}

// Package-level convenience functions
func Info(msg string, fields ...Field) {
	Get().Info(msg, fields...)
}

func Warn(msg string, fields ...Field) {
	Get().Warn(msg, fields...)
}

func ErrorLog(msg string, fields ...Field) {
	Get().ErrorLog(msg, fields...)
}

func Fatal(msg string, fields ...Field) {
	Get().Fatal(msg, fields...)
}

// getDataDir returns the directory audioproc stores logs and its
// parameter database under. ALSA is Linux-only, so unlike the teacher
// there is no Windows branch here.
func getDataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "audioproc")
}
