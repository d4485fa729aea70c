package utilities

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

const (
	infoPrefix  = "\033[32m[INFO]\033[0m "
	errorPrefix = "\033[31m[ERROR]\033[0m "
	debugPrefix = "\033[36m[DEBUG]\033[0m "
)

var (
	InfoLogger  = log.New(os.Stdout, infoPrefix, logFlags)
	ErrorLogger = log.New(os.Stderr, errorPrefix, logFlags)
	DebugLogger = log.New(io.Discard, debugPrefix, logFlags)

	mu    sync.Mutex
	level = "info"
)

// InitLogger configures the loggers for the given level. Only "debug" turns on
// debug output; any other value keeps INFO and ERROR.
func InitLogger(lvl string) {
	mu.Lock()
	defer mu.Unlock()

	level = strings.ToLower(strings.TrimSpace(lvl))
	log.SetFlags(logFlags)

	InfoLogger.SetOutput(os.Stdout)
	ErrorLogger.SetOutput(os.Stderr)
	if level == "debug" {
		DebugLogger.SetOutput(os.Stdout)
	} else {
		DebugLogger.SetOutput(io.Discard)
	}
}

// SetOutput sends every enabled logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	InfoLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
	if level == "debug" {
		DebugLogger.SetOutput(w)
	}
}

// LogRequest writes one access log line for a finished HTTP request.
func LogRequest(method, path, remoteAddr, requestID string, status int, duration time.Duration) {
	InfoLogger.Printf("%s %s %s %d %v request_id=%s", method, path, remoteAddr, status, duration, requestID)
}

// LogError logs err prefixed by the context it happened in.
func LogError(err error, context string) {
	ErrorLogger.Printf("%s: %v", context, err)
}

// LogDebug logs a formatted message when the debug level is enabled.
func LogDebug(format string, v ...interface{}) {
	DebugLogger.Printf(format, v...)
}

// LogInfo logs a formatted informational message.
func LogInfo(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}
