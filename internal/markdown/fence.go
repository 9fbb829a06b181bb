package markdown

import "strings"

const minFenceLength = 3

// fence is an open fenced code block.
type fence struct {
	char   byte
	length int
}

// openFence reports whether line opens a fenced block: a run of at least
// three backticks or tildes followed by an optional info string. Backtick
// info strings cannot contain backticks.
func openFence(line string) (fence, bool) {
	t := strings.TrimLeft(line, " \t")
	if t == "" || (t[0] != '`' && t[0] != '~') {
		return fence{}, false
	}
	n := 0
	for n < len(t) && t[n] == t[0] {
		n++
	}
	if n < minFenceLength {
		return fence{}, false
	}
	if t[0] == '`' && strings.Contains(t[n:], "`") {
		return fence{}, false
	}
	return fence{char: t[0], length: n}, true
}

// closes reports whether line is a bare run of the fence character at least
// as long as the opening run.
func (f fence) closes(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < f.length {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != f.char {
			return false
		}
	}
	return true
}

// FenceTracker follows fenced code state line by line.
type FenceTracker struct {
	open   fence
	inCode bool
}

// Step consumes line. It reports whether line is a fence line and, if so,
// whether it closed the current block.
func (t *FenceTracker) Step(line string) (isFence, closed bool) {
	if t.inCode {
		if t.open.closes(line) {
			t.inCode = false
			return true, true
		}
		return false, false
	}
	if f, ok := openFence(line); ok {
		t.open = f
		t.inCode = true
		return true, false
	}
	return false, false
}

// InCode reports whether the last line consumed was inside a fenced block.
func (t *FenceTracker) InCode() bool {
	return t.inCode
}
