package notification

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
)

const sendTimeout = 5 * time.Second

// Sender delivers one desktop notification.
type Sender func(ctx context.Context, title, message string) error

// Notifier raises desktop notifications for mail arriving in the feed.
type Notifier struct {
	enabled bool
	send    Sender

	mu     sync.Mutex
	seen   map[string]struct{}
	primed bool
}

func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send:    sendNative,
		seen:    make(map[string]struct{}),
	}
}

// WithSender replaces the platform sender.
func (n *Notifier) WithSender(send Sender) *Notifier {
	n.send = send
	return n
}

// MailArrived notifies about mail records that were not part of any
// earlier snapshot and returns how many notifications were sent. The first
// snapshot only records what already exists.
func (n *Notifier) MailArrived(ctx context.Context, records []feed.Record) int {
	n.mu.Lock()
	var fresh []feed.Record
	for _, r := range records {
		if r.Kind != feed.KindMail {
			continue
		}
		if _, ok := n.seen[r.Key()]; ok {
			continue
		}
		n.seen[r.Key()] = struct{}{}
		if n.primed {
			fresh = append(fresh, r)
		}
	}
	n.primed = true
	n.mu.Unlock()

	if !n.enabled {
		if len(fresh) > 0 {
			slog.Debug("Notifications disabled, skipping mail", "count", len(fresh))
		}
		return 0
	}
	for _, r := range fresh {
		title := "Mail"
		if r.Agent != "" {
			title = "Mail from " + r.Agent
		}
		n.notify(ctx, title, r.Title)
	}
	return len(fresh)
}

func (n *Notifier) notify(ctx context.Context, title, message string) {
	slog.Debug("Sending notification", "title", title, "message", message)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := n.send(ctx, title, message); err != nil {
			slog.Warn("Failed to send notification", "error", err, "title", title)
		}
	}()
}

func sendNative(ctx context.Context, title, message string) error {
	switch runtime.GOOS {
	case "darwin":
		return sendMacOS(ctx, title, message)
	case "linux", "freebsd", "openbsd":
		return exec.CommandContext(ctx, "notify-send", "--app-name=townview", title, message).Run()
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}
}

func sendMacOS(ctx context.Context, title, message string) error {
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, quote.Replace(message), quote.Replace(title))
	output, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript failed: %w, output: %s", err, string(output))
	}
	return nil
}
