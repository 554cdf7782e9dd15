package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit appends one line per admin or user action, and per failure, to a
// log file:
//
//	> ACTION: [ 2025-01-20T10:00:00.000Z ]  Flight AI202 added
type Audit struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// OpenAudit opens path for appending, creating its directory if needed.
func OpenAudit(path string) (*Audit, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	a := NewAudit(f)
	a.closer = f
	return a, nil
}

func NewAudit(w io.Writer) *Audit {
	return &Audit{w: w, now: time.Now}
}

// NopAudit discards everything.
func NopAudit() *Audit {
	return NewAudit(io.Discard)
}

func (a *Audit) Action(format string, args ...any) {
	a.write("ACTION", fmt.Sprintf(format, args...))
}

func (a *Audit) Error(format string, args ...any) {
	a.write("ERROR", fmt.Sprintf(format, args...))
}

func (a *Audit) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *Audit) write(kind, msg string) {
	if a == nil {
		return
	}
	ts := a.now().UTC().Format("2006-01-02T15:04:05.000Z")

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := fmt.Fprintf(a.w, "> %s: [ %s ]  %s\n", kind, ts, msg); err != nil {
		slog.Error("audit log write failed", "error", err)
	}
}
