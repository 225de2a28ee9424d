// Package push implements the event channel adapter: one websocket
// connection per actor role, delivering decoded push events to a
// handler synchronously, in arrival order. Reconnection policy belongs
// to the caller; the adapter's only contract is ordered one-at-a-time
// delivery between Connect and Disconnect.
package push

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lqhuy/chatdesk/internal/chat"
	"github.com/lqhuy/chatdesk/internal/logging"
)

const defaultHandshakeTimeout = 10 * time.Second

// Role selects which push channel the adapter joins.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Handler receives decoded events. HandleEvent is called from the
// adapter's read goroutine, one event at a time.
type Handler interface {
	HandleEvent(ev chat.Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ev chat.Event)

func (f HandlerFunc) HandleEvent(ev chat.Event) { f(ev) }

// Config configures an Adapter.
type Config struct {
	// BaseURL is the backend origin; http(s) schemes are rewritten to
	// ws(s).
	BaseURL string
	// Role selects the admin or customer channel.
	Role Role
	// SessionID is required for the customer role.
	SessionID string
	// AuthToken, when set, is sent as the access_token cookie.
	AuthToken string
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
}

// Adapter owns one logical push connection.
type Adapter struct {
	cfg    Config
	wsURL  string
	logger zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed chan struct{}
}

// NewAdapter validates the config and prepares an adapter. No network
// activity happens until Connect.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Role == "" {
		cfg.Role = RoleAdmin
	}
	if cfg.Role == RoleCustomer && cfg.SessionID == "" {
		return nil, fmt.Errorf("customer role requires a session id")
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	wsURL, err := channelURL(cfg)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		cfg:    cfg,
		wsURL:  wsURL,
		logger: logging.Component("push").With().Str("role", string(cfg.Role)).Logger(),
	}, nil
}

// URL returns the resolved websocket endpoint.
func (a *Adapter) URL() string { return a.wsURL }

// Connect dials the channel and starts delivering events to handler
// until the connection drops or Disconnect is called. It returns an
// error if the adapter is already connected.
func (a *Adapter) Connect(ctx context.Context, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler required")
	}

	a.mu.Lock()
	if a.conn != nil {
		a.mu.Unlock()
		return fmt.Errorf("already connected")
	}

	dialer := websocket.Dialer{HandshakeTimeout: a.cfg.HandshakeTimeout}
	header := make(map[string][]string)
	if a.cfg.AuthToken != "" {
		header["Cookie"] = []string{"access_token=" + a.cfg.AuthToken}
	}

	conn, _, err := dialer.DialContext(ctx, a.wsURL, header)
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("dial %s: %w", a.wsURL, err)
	}
	a.conn = conn
	a.closed = make(chan struct{})
	a.mu.Unlock()

	connID := uuid.New().String()
	a.logger.Info().Str("conn_id", connID).Str("url", a.wsURL).Msg("push channel connected")

	go a.readLoop(conn, connID, handler)
	return nil
}

// Disconnect closes the channel. Safe to call multiple times and
// before Connect.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	conn := a.conn
	a.conn = nil
	a.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// Done returns a channel closed when the current connection's read
// loop exits. Nil before the first Connect.
func (a *Adapter) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *Adapter) readLoop(conn *websocket.Conn, connID string, handler Handler) {
	defer func() {
		a.mu.Lock()
		if a.conn == conn {
			a.conn = nil
		}
		closed := a.closed
		a.mu.Unlock()
		_ = conn.Close()
		if closed != nil {
			close(closed)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.logger.Warn().Str("conn_id", connID).Err(err).Msg("push channel dropped")
			} else {
				a.logger.Debug().Str("conn_id", connID).Err(err).Msg("push channel closed")
			}
			return
		}

		ev, err := chat.DecodeEvent(data)
		if err != nil {
			// Fail silent at this layer: the reconciliation engine never
			// sees malformed frames.
			a.logger.Debug().Str("conn_id", connID).Err(err).Msg("dropping undecodable frame")
			continue
		}
		handler.HandleEvent(ev)
	}
}

func channelURL(cfg Config) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("base URL required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	switch cfg.Role {
	case RoleAdmin:
		u.Path += "/chat/ws/admin"
	case RoleCustomer:
		u.Path += "/chat/ws/customer"
		q := u.Query()
		q.Set("sessionId", cfg.SessionID)
		u.RawQuery = q.Encode()
	default:
		return "", fmt.Errorf("unknown role %q", cfg.Role)
	}
	return u.String(), nil
}
