package helpers

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kartfirsat/campaignworker/logger"
)

// LoggerInterface is what the worker needs to report per-source outcomes
type LoggerInterface interface {
	LogError(source string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger mirrors source errors into a plain text file, one line per error,
// so failed runs can be reviewed without the structured log.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLogger appends to path. An empty path disables the file.
func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

func (l *Logger) LogError(source string, err error) {
	logger.LogError(source, err, "source reported an error")
	if l.path == "" {
		return
	}

	line := fmt.Sprintf("[%s] [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), source, oneLine(err.Error()))

	l.mu.Lock()
	defer l.mu.Unlock()
	f, openErr := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if openErr != nil {
		logger.Warn("failed to open error file %s: %v", l.path, openErr)
		return
	}
	defer f.Close()
	if _, writeErr := f.WriteString(line); writeErr != nil {
		logger.Warn("failed to write error file %s: %v", l.path, writeErr)
	}
}

func (l *Logger) LogInfo(format string, args ...interface{}) {
	logger.Info(format, args...)
}

// oneLine keeps multi-line errors (page excerpts, wrapped causes) on a single line
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
