package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	configs "go_mock_interceptor/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CustomFormatter adds caller, process and goroutine fields to JSON entries.
type CustomFormatter struct {
	logrus.JSONFormatter
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if _, ok := entry.Data["file"]; !ok && entry.HasCaller() {
		entry.Data["file"] = filepath.Base(entry.Caller.File)
		entry.Data["line"] = entry.Caller.Line
		entry.Data["func"] = filepath.Base(entry.Caller.Function)
	}

	entry.Data["pid"] = os.Getpid()
	entry.Data["goroutine_id"] = getGoroutineID()

	return f.JSONFormatter.Format(entry)
}

// Log is the global logger instance
var (
	Log  *logrus.Logger
	once sync.Once
	mu   sync.Mutex
)

// InitLogger (re)configures the global logger. It may be called again, for
// example after a config file was loaded.
func InitLogger(cfg configs.LogConfig) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	Log = logger
	mu.Unlock()
	return nil
}

func newLogger(cfg configs.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&CustomFormatter{
			JSONFormatter: logrus.JSONFormatter{
				TimestampFormat: time.RFC3339,
				FieldMap: logrus.FieldMap{
					logrus.FieldKeyTime:  "@timestamp",
					logrus.FieldKeyLevel: "level",
					logrus.FieldKeyMsg:   "message",
				},
			},
		})
		logger.SetReportCaller(true)
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}
	logger.SetOutput(out)

	return logger, nil
}

// GetLogger returns the singleton logger instance
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	once.Do(func() {
		if Log != nil {
			return
		}
		logger, err := newLogger(configs.DefaultLogConfig())
		if err != nil {
			panic(fmt.Sprintf("failed to create default logger: %v", err))
		}
		Log = logger
	})
	return Log
}

// getGoroutineID parses the id out of the current goroutine's stack header.
func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	fmt.Sscanf(string(b), "goroutine %d", &id)
	return id
}
