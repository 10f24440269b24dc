// Package clip provides clipboard backends behind the two-method capability
// the edit interpreter consumes. Memory keeps contents in-process; System
// talks to the OS clipboard and swallows its errors, since a failed clipboard
// round-trip must never break an edit.
package clip

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// Memory is an in-process clipboard, also used by tests.
type Memory struct {
	mu       sync.Mutex
	contents string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contents
}

func (m *Memory) Set(contents string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents = contents
}

// System is the process-wide OS clipboard.
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (*System) Get() string {
	contents, err := clipboard.ReadAll()
	if err != nil {
		logrus.Warnf("reading system clipboard failed: %v", err)
		return ""
	}
	return contents
}

func (*System) Set(contents string) {
	if err := clipboard.WriteAll(contents); err != nil {
		logrus.Warnf("writing system clipboard failed: %v", err)
	}
}
