package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	logger       = log.New()
	invocationID = uuid.NewString()
)

func init() {
	// stdout carries the KEY=VALUE results, so logs always go to stderr or a file.
	logger.Out = os.Stderr
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stderr", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.SetLevel(log.InfoLevel)
	if lvl, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
}

func openLogFile() (io.Writer, error) {
	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(cwd, "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// SetFormat switches between "json" (default) and "text".
func SetFormat(format string) {
	if format == "text" {
		logger.Formatter = &log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
		return
	}
	logger.Formatter = &log.JSONFormatter{TimestampFormat: time.RFC3339Nano}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	logger.Out = w
}

func GetLogger() *log.Entry {
	function, file, line, _ := runtime.Caller(1)

	name := ""
	if fn := runtime.FuncForPC(function); fn != nil {
		name = fn.Name()
	}
	return logger.WithFields(log.Fields{
		"invocationId": invocationID,
		"function":     name,
		"file":         filepath.Base(file),
		"line":         line,
	})
}
