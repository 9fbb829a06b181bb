package logsink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for logsink:
// - Logger records component, level, run id and fields
// - Error values in fields are stored as strings
// - File sink appends JSON lines across reopen
// - Std sink drops debug unless verbose and prefixes warnings
// - Panicking sinks never reach the caller
// - Multi fans out and collapses trivial cases
// - WithRunID tags only untagged entries

func TestLogger_RecordsEntry(t *testing.T) {
	t.Parallel()

	mem := &Memory{}
	l := NewLogger(mem, "retriever").WithRun("run-1")

	l.Warn("fetch failed", "path", "README.md", "err", errors.New("boom"))

	entries := mem.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "retriever", entries[0].Component)
	assert.Equal(t, LevelWarn, entries[0].Level)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, "README.md", entries[0].Fields["path"])
	assert.Equal(t, "boom", entries[0].Fields["err"])
	assert.Equal(t, 1, mem.Count(LevelWarn))
}

func TestLogger_NilSinkIsNop(t *testing.T) {
	t.Parallel()

	l := NewLogger(nil, "x")
	assert.NotPanics(t, func() { l.Info("hello") })
}

type panicSink struct{}

func (panicSink) Record(Entry) { panic("sink exploded") }

func TestLogger_SinkPanicIsSwallowed(t *testing.T) {
	t.Parallel()

	l := NewLogger(panicSink{}, "x")
	assert.NotPanics(t, func() { l.Error("still fine") })
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "atlas.log")

	for i := 0; i < 2; i++ {
		sink, closeFn, err := NewFileSink(path)
		require.NoError(t, err)
		NewLogger(sink, "parser").Info("parsed", "n", i)
		require.NoError(t, closeFn())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		lines = append(lines, e)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "parser", lines[1].Component)
	assert.EqualValues(t, 1, lines[1].Fields["n"])
}

func TestStdSink_VerbosityAndPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewStdSink(log.New(&buf, "", 0), false)
	l := NewLogger(sink, "crawler")

	l.Debug("hidden")
	l.Warn("page failed", "url", "https://x.dev")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Warning: [crawler] page failed url=https://x.dev")
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := &Memory{}, &Memory{}
	NewLogger(Multi(a, nil, b), "x").Info("hi")
	assert.Len(t, a.Entries(), 1)
	assert.Len(t, b.Entries(), 1)

	assert.Equal(t, Nop, Multi())
	assert.Same(t, a, Multi(nil, a))
}

func TestNewRunID_Unique(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestWithRunID(t *testing.T) {
	t.Parallel()

	mem := &Memory{}
	sink := WithRunID(mem, "run-1")
	NewLogger(sink, "a").Info("untagged")
	NewLogger(sink, "b").WithRun("run-2").Info("tagged")

	entries := mem.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, "run-2", entries[1].RunID)
}
