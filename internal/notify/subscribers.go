// ABOUTME: Built-in notification subscribers.
// ABOUTME: Structured slog output, lipgloss terminal toasts, and an in-memory recorder.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// LogSubscriber writes notifications as structured log records.
func LogSubscriber(logger *slog.Logger) Subscriber {
	return SubscriberFunc(func(n Notification) {
		switch n.Kind {
		case KindError:
			logger.Error(n.Message, slog.String("cluster", n.Cluster))
		default:
			logger.Info(n.Title,
				slog.String("signature", n.Signature),
				slog.String("cluster", n.Cluster),
				slog.String("explorer", n.ExplorerURL),
			)
		}
	})
}

var (
	toastSuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	toastErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	toastDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// ToastSubscriber prints one-line toasts to w, the terminal counterpart of a UI toast.
func ToastSubscriber(w io.Writer) Subscriber {
	return SubscriberFunc(func(n Notification) {
		switch n.Kind {
		case KindError:
			_, _ = fmt.Fprintf(w, "%s %s\n", toastErrorStyle.Render("✗"), n.Message)
		default:
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", toastSuccessStyle.Render("✓"), n.Title, n.Signature)
			if n.ExplorerURL != "" {
				_, _ = fmt.Fprintf(w, "  %s\n", toastDimStyle.Render(n.ExplorerURL))
			}
		}
	})
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Subscriber.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
