package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/shared/messages"
	"github.com/automoto/retrorealms/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"go.uber.org/zap"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrInvalidLogin = errors.New("invalid login")
	ErrServerError  = errors.New("server error")
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateLoggedIn
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateLoggedIn:
		return "logged in"
	case StateError:
		return "error"
	}
	return "disconnected"
}

// Client manages the WebSocket session with the game server.
// Inbound messages are queued in arrival order and handed to the frame loop by DrainEvents.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state       ClientState
	lastError   error
	sessionID   string
	playerID    netconfig.EntityID
	connectedAt time.Time
	ended       bool
	conn        *websocket.Conn

	events chan messages.Event
	log    *zap.SugaredLogger
}

// NewClient creates a client whose event queue holds queueSize events before
// the transport goroutine waits for the frame loop.
func NewClient(queueSize int, log *zap.SugaredLogger) *Client {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Client{
		state:  StateDisconnected,
		events: make(chan messages.Event, queueSize),
		log:    logging.OrNop(log),
	}
}

// Connect dials the server in a background goroutine and logs in once the socket is open.
func (c *Client) Connect(address, username, password string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.sessionID = uuid.NewString()
	c.playerID = 0
	c.ended = false
	session := c.sessionID
	c.mu.Unlock()

	log := c.log.With("session", session)
	log.Infow("connecting", "address", address, "user", username)

	router.ResetRouter()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Infow("connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.connectedAt = time.Now()
		c.mu.Unlock()

		if err := c.SendMessage(messages.LoginRequest{Username: username, Password: password}); err != nil {
			c.fail(fmt.Errorf("send login request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.LoginResponse) {
		c.handleLogin(msg)
	})

	router.On(func(_ *router.NetworkClient, msg messages.MapInfo) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.GameState) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.MoveStart) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.MoveStop) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.EntityAppear) { c.push(msg) })
	router.On(func(_ *router.NetworkClient, msg messages.EntityDisappear) { c.push(msg) })

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Infow("disconnected", "error", err)
		c.endSession(err)
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Warnw("transport error", "error", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.fail(fmt.Errorf("connection failed: %w", err))
			return
		}
		c.endSession(nil)
	}()
}

// Disconnect closes the socket. A LoggedOut event follows in the queue.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}
	router.ResetRouter()

	// The frame loop may be the caller; queue the event without waiting on it.
	go c.endSession(nil)
}

// SendMessage serializes msg with the necs router and writes it to the socket.
func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize %T: %w", msg, err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// DrainEvents returns every queued event in arrival order without blocking.
func (c *Client) DrainEvents() []messages.Event {
	return drainChan(c.events)
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) PlayerID() netconfig.EntityID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Uptime is how long the current connection has been open, or 0.
func (c *Client) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.connectedAt.IsZero() || c.ended {
		return 0
	}
	return time.Since(c.connectedAt)
}

func (c *Client) handleLogin(resp messages.LoginResponse) {
	switch resp.Result {
	case messages.LoginSuccess:
		c.mu.Lock()
		c.state = StateLoggedIn
		c.playerID = resp.ID
		c.mu.Unlock()
		c.log.Infow("logged in", "session", c.SessionID(), "player", resp.ID)
		c.push(messages.LoggedIn{PlayerID: resp.ID})
	case messages.LoginInvalidLogin:
		c.fail(ErrInvalidLogin)
	default:
		c.fail(fmt.Errorf("%w: login result %q", ErrServerError, resp.Result))
	}
}

// push queues ev, waiting for room when the queue is full. Events are never dropped.
func (c *Client) push(ev messages.Event) {
	c.events <- ev
}

// fail records err and ends the session with it.
func (c *Client) fail(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
	c.log.Errorw("session failed", "session", c.SessionID(), "error", err)
	c.endSession(err)
}

// endSession queues a single LoggedOut per session, however many paths report the end.
func (c *Client) endSession(err error) {
	c.mu.Lock()
	if c.ended {
		c.mu.Unlock()
		return
	}
	c.ended = true
	if c.state != StateError {
		c.state = StateDisconnected
	}
	c.conn = nil
	c.mu.Unlock()

	c.push(messages.LoggedOut{Err: err})
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
