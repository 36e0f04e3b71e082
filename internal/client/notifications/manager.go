package notifications

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matchline/tournops/internal/client/models"
	"github.com/matchline/tournops/internal/logging"
)

// State is the channel connection state. It is derived, never persisted:
// every process starts Disconnected.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ErrEmptyUserID is returned by Connect when no user id is supplied.
var ErrEmptyUserID = errors.New("notifications: empty user id")

// EventKind discriminates subscriber events.
type EventKind int

const (
	// EventStateChanged reports a connection state transition.
	EventStateChanged EventKind = iota
	// EventNotification reports a new entry appended to the log.
	EventNotification
)

// Event is delivered to subscribers on state transitions and inbound
// notifications.
type Event struct {
	Kind         EventKind
	State        State
	Notification *models.Notification
}

// frame is the inbound wire shape.
type frame struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Config tunes the reconnect behavior.
type Config struct {
	// BaseDelay is the first retry delay; it doubles per attempt.
	BaseDelay time.Duration
	// MaxAttempts bounds consecutive failed dials before the manager gives
	// up and stays Disconnected.
	MaxAttempts int
}

func (c *Config) applyDefaults() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
}

// Manager owns one live push channel bound to a user id. All methods are
// safe for concurrent use.
type Manager struct {
	wsURL  string
	cfg    Config
	log    logging.Logger
	dialer *websocket.Dialer

	mu     sync.Mutex
	state  State
	userID string
	conn   *websocket.Conn
	cancel context.CancelFunc
	epoch  uint64

	entries []models.Notification
	unread  int

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewManager builds a manager dialing wsURL (e.g. "ws://host/ws/notifications").
func NewManager(wsURL string, cfg Config, log logging.Logger) *Manager {
	cfg.applyDefaults()
	return &Manager{
		wsURL:  wsURL,
		cfg:    cfg,
		log:    log.With("component", "notifications"),
		dialer: websocket.DefaultDialer,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers fn for state-change and notification events. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) publish(ev Event) {
	m.subMu.Lock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected mirrors State() == StateConnected exactly.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// BoundUserID returns the user id the channel is currently bound to, or "".
func (m *Manager) BoundUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// Notifications returns a copy of the log in arrival order.
func (m *Manager) Notifications() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.entries...)
}

// UnreadCount returns the number of notifications since the last MarkAsRead.
func (m *Manager) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread
}

// MarkAsRead resets the unread counter. The log keeps its entries; this is
// a global seen marker, not a per-item flag.
func (m *Manager) MarkAsRead() {
	m.mu.Lock()
	m.unread = 0
	m.mu.Unlock()
}

// ClearNotifications empties the log and the unread counter. Local only;
// the backend is not informed.
func (m *Manager) ClearNotifications() {
	m.mu.Lock()
	m.entries = nil
	m.unread = 0
	m.mu.Unlock()
}

// Connect establishes the channel for userID. Calling again with the same id
// while Connecting or Connected is a no-op; a different id tears the current
// channel down first, so at most one live channel exists at any instant.
// The caller is responsible for ensuring the user is authenticated.
func (m *Manager) Connect(userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	m.mu.Lock()

	if m.userID == userID && m.state != StateDisconnected {
		m.mu.Unlock()
		return nil
	}
	m.teardownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.epoch++
	epoch := m.epoch
	m.userID = userID
	m.state = StateConnecting
	m.mu.Unlock()

	m.publish(Event{Kind: EventStateChanged, State: StateConnecting})

	go m.run(ctx, epoch, userID)
	return nil
}

// Disconnect transitions to Disconnected from any state, cancelling pending
// reconnect timers. Safe to call repeatedly.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	changed := m.state != StateDisconnected
	m.teardownLocked()
	m.userID = ""
	m.mu.Unlock()

	if changed {
		m.publish(Event{Kind: EventStateChanged, State: StateDisconnected})
	}
}

// teardownLocked cancels the run loop and closes the connection. Callers
// hold m.mu.
func (m *Manager) teardownLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.epoch++ // invalidates any in-flight run loop
	m.state = StateDisconnected
}

// run dials, reads, and retries with exponential backoff until the epoch is
// invalidated or the attempts are exhausted.
func (m *Manager) run(ctx context.Context, epoch uint64, userID string) {
	target := m.wsURL + "?userId=" + url.QueryEscape(userID)

	for attempt := 0; attempt < m.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := m.cfg.BaseDelay << (attempt - 1)
			m.log.Debug(ctx, "scheduling reconnect", "attempt", attempt, "delay", delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}

		conn, _, err := m.dialer.DialContext(ctx, target, nil)
		if err != nil {
			m.log.Warn(ctx, "channel dial failed", "attempt", attempt+1, "error", err)
			continue
		}

		m.mu.Lock()
		if m.epoch != epoch {
			m.mu.Unlock()
			_ = conn.Close()
			return
		}
		m.conn = conn
		m.state = StateConnected
		m.mu.Unlock()

		m.log.Info(ctx, "channel connected", "userId", userID)
		m.publish(Event{Kind: EventStateChanged, State: StateConnected})

		err = m.readLoop(conn, epoch)

		m.mu.Lock()
		if m.epoch != epoch {
			// Explicit disconnect already ran its own cleanup.
			m.mu.Unlock()
			return
		}
		m.conn = nil
		m.state = StateDisconnected
		m.mu.Unlock()

		m.log.Warn(ctx, "channel dropped", "error", err)
		m.publish(Event{Kind: EventStateChanged, State: StateDisconnected})

		if ctx.Err() != nil {
			return
		}

		// Transport failure re-enters the retry loop.
		m.mu.Lock()
		if m.epoch != epoch {
			m.mu.Unlock()
			return
		}
		m.state = StateConnecting
		m.mu.Unlock()
		m.publish(Event{Kind: EventStateChanged, State: StateConnecting})

		attempt = -1 // a successful connect resets the backoff schedule
	}

	m.log.Warn(ctx, "channel retries exhausted", "userId", userID)

	m.mu.Lock()
	stale := m.epoch != epoch
	if !stale {
		m.state = StateDisconnected
	}
	m.mu.Unlock()

	if !stale {
		m.publish(Event{Kind: EventStateChanged, State: StateDisconnected})
	}
}

// readLoop consumes frames until the connection drops.
func (m *Manager) readLoop(conn *websocket.Conn, epoch uint64) error {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		m.ingest(f, epoch)
	}
}

// ingest validates and appends one inbound frame.
func (m *Manager) ingest(f frame, epoch uint64) {
	typ, ok := models.ParseNotificationType(f.Type)
	if !ok {
		m.log.Warn(context.Background(), "dropping notification of unknown type", "type", f.Type)
		return
	}

	n := models.Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		Title:      f.Title,
		Message:    f.Message,
		Timestamp:  f.Timestamp,
		ReceivedAt: time.Now(),
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.entries = append(m.entries, n)
	m.unread++
	m.mu.Unlock()

	m.publish(Event{Kind: EventNotification, State: StateConnected, Notification: &n})
}
