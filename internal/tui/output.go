package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// programRef lets worker goroutines send messages back into the UI loop.
var (
	programMu  sync.RWMutex
	programRef *tea.Program
)

// SetProgramRef stores the running program so background work can reach it.
func SetProgramRef(p *tea.Program) {
	programMu.Lock()
	programRef = p
	programMu.Unlock()
}

// GetProgramRef returns the running program, or nil before Start.
func GetProgramRef() *tea.Program {
	programMu.RLock()
	defer programMu.RUnlock()
	return programRef
}

// LogMsg carries one line of log output into the viewport.
type LogMsg string

// programWriter adapts the program to io.Writer so the logging package can
// stream straight into the UI while a load runs.
type programWriter struct{}

func (programWriter) Write(p []byte) (int, error) {
	if prog := GetProgramRef(); prog != nil {
		prog.Send(LogMsg(string(p)))
	}
	return len(p), nil
}
