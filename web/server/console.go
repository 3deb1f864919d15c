package server

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Console message levels
const (
	levelInfo  = "info"
	levelError = "error"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info" or "error"
}

// WebLogger mirrors render logs to the server's stdout, tagged with the render ID,
// and streams them to the client's console
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	out         io.Writer
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		out:         os.Stdout,
	}
}

// Printf logs an info line
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.send(levelInfo, fmt.Sprintf(format, args...))
}

// Errorf logs a failure; the client console shows it at error level
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.send(levelError, fmt.Sprintf(format, args...))
}

func (wl *WebLogger) send(level, message string) {
	// Concurrent renders share stdout
	fmt.Fprintf(wl.out, "[%s] %s", wl.renderID, message)

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
		// Channel full, skip (don't block)
	}
}
