package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/zsprackett/morty-dashboard/internal/events"
)

// Config holds notification settings.
type Config struct {
	Enabled bool   `json:"enabled"`
	Webhook string `json:"webhook"`
	NtfyURL string `json:"ntfy"`
}

// Message is one notification, already rendered.
type Message struct {
	Event     events.Type
	Title     string
	Body      string
	SessionID string
	Priority  int
	Tags      []string
	Timestamp time.Time
}

// Notifier posts webhook and ntfy notifications for failed tasks and
// finished sessions. It implements events.Emitter.
type Notifier struct {
	cfg    Config
	logger *slog.Logger
	client *http.Client

	mu      sync.Mutex
	session string
	wg      sync.WaitGroup
}

func New(cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Emit renders a Message for interesting events and delivers it on a new
// goroutine, so the producer never waits on the network.
func (n *Notifier) Emit(e events.Event) {
	if !n.cfg.Enabled {
		return
	}
	msg, ok := n.messageFor(e)
	if !ok {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.Notify(msg)
	}()
}

// Wait blocks until in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) messageFor(e events.Event) (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	str := func(key string) string {
		s, _ := e.String(key)
		return s
	}
	msg := Message{Event: e.Type, SessionID: n.session, Timestamp: e.Time()}
	switch e.Type {
	case events.SessionStart:
		n.session = str("id")
		return Message{}, false
	case events.TaskFail:
		title := str("title")
		if title == "" {
			title = str("id")
		}
		msg.Title = fmt.Sprintf("Task failed: %s", title)
		msg.Body = str("error")
		msg.Priority = 4
		msg.Tags = []string{"rotating_light"}
	case events.SessionEnd:
		msg.Title = "Morty session ended"
		msg.Body = n.session
		msg.Priority = 3
		msg.Tags = []string{"checkered_flag"}
		n.session = ""
	default:
		return Message{}, false
	}
	return msg, true
}

// Notify sends msg synchronously to every configured target.
func (n *Notifier) Notify(msg Message) {
	if !n.cfg.Enabled {
		return
	}
	if n.cfg.Webhook != "" {
		if err := n.sendWebhook(msg); err != nil {
			n.logger.Warn("notify: webhook failed", "url", n.cfg.Webhook, "err", err)
		}
	}
	if n.cfg.NtfyURL != "" {
		if err := n.sendNtfy(msg); err != nil {
			n.logger.Warn("notify: ntfy failed", "url", n.cfg.NtfyURL, "err", err)
		}
	}
}

type webhookPayload struct {
	Event     string `json:"event"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Session   string `json:"session,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (n *Notifier) sendWebhook(msg Message) error {
	return n.post(n.cfg.Webhook, webhookPayload{
		Event:     string(msg.Event),
		Title:     msg.Title,
		Message:   msg.Body,
		Session:   msg.SessionID,
		Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
	})
}

type ntfyPayload struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (n *Notifier) sendNtfy(msg Message) error {
	return n.post(n.cfg.NtfyURL, ntfyPayload{
		Title:    msg.Title,
		Message:  msg.Body,
		Priority: msg.Priority,
		Tags:     msg.Tags,
	})
}

func (n *Notifier) post(url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := n.client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
