package tui

import (
	"os"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mbarbosa/chatspace/internal/notify"
)

// Notifier delivers notifications as in-app alerts. The terminal needs no
// permission prompt, so permission is always granted.
type Notifier struct {
	mu      sync.Mutex
	program *tea.Program
	focused atomic.Bool
}

// NewNotifier returns a notifier that assumes the window starts focused.
func NewNotifier() *Notifier {
	n := &Notifier{}
	n.focused.Store(true)
	return n
}

func (n *Notifier) setProgram(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// setFocused records terminal focus, updated from tea.FocusMsg/BlurMsg.
func (n *Notifier) setFocused(focused bool) {
	n.focused.Store(focused)
}

// Focused reports whether the terminal window has focus.
func (n *Notifier) Focused() bool {
	return n.focused.Load()
}

// RequestPermission implements notify.Notifier.
func (n *Notifier) RequestPermission() notify.Permission {
	return notify.PermissionGranted
}

// Permission implements notify.Notifier.
func (n *Notifier) Permission() notify.Permission {
	return notify.PermissionGranted
}

// Notify implements notify.Notifier. Called from the send goroutine, so it
// goes through the program rather than touching the model. The bell rings the
// terminal even while the window is in the background.
func (n *Notifier) Notify(_, body string) {
	os.Stderr.WriteString("\a")
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		p.Send(notificationMsg{body: body})
	}
}
