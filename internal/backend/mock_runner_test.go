package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// mockRunner implements runner.Runner for testing. It records every
// invocation and simulates the external tools' file side effects so the
// cache-reuse logic sees realistic directories.
type mockRunner struct {
	mu    sync.Mutex
	calls []mockCall
	fail  map[string]error // exe -> error to return
}

type mockCall struct {
	workdir string
	exe     string
	args    []string
}

func newMockRunner() *mockRunner {
	return &mockRunner{fail: map[string]error{}}
}

func (m *mockRunner) Run(_ context.Context, workdir string, exe string, args ...string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockCall{workdir: workdir, exe: exe, args: args})
	m.mu.Unlock()

	if err := m.fail[exe]; err != nil {
		return "", err
	}

	switch exe {
	case "latex":
		return "", writeFile(workdir, "eq.dvi", "dvi-bytes")
	case "dvisvgm":
		return "", writeFile(workdir, "eq.svg", `<svg><g fill="#fff"><path d="M0 0"/></g></svg>`)
	case "magick":
		// Last argument is the output file.
		return "", writeFile(workdir, args[len(args)-1], "png-bytes")
	case "typst":
		// typst compile eq.typ <out> ...
		return "", writeFile(workdir, args[2], "typst-"+args[2])
	}
	return "", nil
}

func (m *mockRunner) count(exe string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.exe == exe {
			n++
		}
	}
	return n
}

func (m *mockRunner) lastCall(exe string) (mockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].exe == exe {
			return m.calls[i], true
		}
	}
	return mockCall{}, false
}

func (m *mockRunner) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func argsJoined(c mockCall) string {
	return strings.Join(c.args, " ")
}
