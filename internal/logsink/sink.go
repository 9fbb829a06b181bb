// Package logsink provides the append-only execution log shared by pipeline runs.
//
// Components never talk to a global logger. A Sink is injected into each
// component and every write is fire-and-forget: a failing sink must never
// fail the operation that produced the entry.
package logsink

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the severity of an entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is a single execution log record.
type Entry struct {
	Time      time.Time      `json:"time"`
	RunID     string         `json:"run_id,omitempty"`
	Component string         `json:"component"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Sink receives log entries. Implementations must not block for long and
// must swallow their own failures.
type Sink interface {
	Record(e Entry)
}

// NewRunID returns a fresh identifier for a pipeline run.
func NewRunID() string {
	return uuid.New().String()
}

// Logger is a convenience wrapper binding a sink to a component and run.
type Logger struct {
	sink      Sink
	component string
	runID     string
}

// NewLogger creates a component logger. A nil sink is replaced by Nop.
func NewLogger(sink Sink, component string) *Logger {
	if sink == nil {
		sink = Nop
	}
	return &Logger{sink: sink, component: component}
}

// WithRun returns a copy of the logger tagged with a run id.
func (l *Logger) WithRun(runID string) *Logger {
	cp := *l
	cp.runID = runID
	return &cp
}

func (l *Logger) Debug(msg string, kv ...any) { l.record(LevelDebug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.record(LevelInfo, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.record(LevelWarn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.record(LevelError, msg, kv) }

func (l *Logger) record(level Level, msg string, kv []any) {
	if l == nil {
		return
	}
	defer func() {
		// Sink panics never reach the caller.
		_ = recover()
	}()
	l.sink.Record(Entry{
		Time:      time.Now().UTC(),
		RunID:     l.runID,
		Component: l.component,
		Level:     level,
		Message:   msg,
		Fields:    toFields(kv),
	})
}

// toFields converts alternating key/value pairs into a map.
// A trailing key without a value is stored under "!extra".
func toFields(kv []any) map[string]any {
	if len(kv) == 0 {
		return nil
	}
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			fields["!extra"] = key
			break
		}
		val := kv[i+1]
		if err, isErr := val.(error); isErr && err != nil {
			val = err.Error()
		}
		fields[key] = val
	}
	return fields
}

type nopSink struct{}

func (nopSink) Record(Entry) {}

// Nop discards every entry.
var Nop Sink = nopSink{}

// fileSink appends JSON lines to a file. Each entry is a single write on an
// O_APPEND descriptor, so concurrent runs interleave whole lines only.
type fileSink struct {
	f *os.File
}

// NewFileSink opens (or creates) path for appending.
func NewFileSink(path string) (Sink, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &fileSink{f: f}, f.Close, nil
}

func (s *fileSink) Record(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	_, _ = s.f.Write(append(data, '\n'))
}

// stdSink writes "Warning:"-prefixed text lines through a *log.Logger.
type stdSink struct {
	logger  *log.Logger
	verbose bool
}

// NewStdSink writes entries through logger. Debug entries are dropped unless verbose.
func NewStdSink(logger *log.Logger, verbose bool) Sink {
	if logger == nil {
		logger = log.Default()
	}
	return &stdSink{logger: logger, verbose: verbose}
}

func (s *stdSink) Record(e Entry) {
	if e.Level == LevelDebug && !s.verbose {
		return
	}
	s.logger.Print(FormatLine(e))
}

// FormatLine renders an entry as a single human-readable line.
func FormatLine(e Entry) string {
	var sb strings.Builder
	switch e.Level {
	case LevelWarn:
		sb.WriteString("Warning: ")
	case LevelError:
		sb.WriteString("Error: ")
	}
	sb.WriteString("[")
	sb.WriteString(e.Component)
	sb.WriteString("] ")
	sb.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

type multiSink []Sink

func (m multiSink) Record(e Entry) {
	for _, s := range m {
		s.Record(e)
	}
}

// Multi fans entries out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return Nop
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

type runSink struct {
	sink  Sink
	runID string
}

func (r runSink) Record(e Entry) {
	if e.RunID == "" {
		e.RunID = r.runID
	}
	r.sink.Record(e)
}

// WithRunID tags every entry that has no run id yet.
func WithRunID(sink Sink, runID string) Sink {
	if sink == nil {
		sink = Nop
	}
	return runSink{sink: sink, runID: runID}
}

// Memory keeps entries in memory. Intended for tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Record(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// Entries returns a copy of the recorded entries.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Count returns the number of entries recorded at level.
func (m *Memory) Count(level Level) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}
