package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/plankhq/plank.go/pkg/connection"
	"github.com/plankhq/plank.go/pkg/constants"
	"github.com/plankhq/plank.go/pkg/logger"
	"github.com/plankhq/plank.go/pkg/models"
)

// DefaultDialer is the gorilla dialer used by Connection. It enables
// per-message compression, which the event stream supports.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
}

const (
	// StateUnknown indicates the connection was initialized in an
	// unexpected way. It is intentionally the zero value of State.
	StateUnknown State = iota
	// StatePending is the initial state before Connect is called.
	StatePending
	// StateConnecting indicates the dial is in progress.
	StateConnecting
	// StateConnected indicates the stream is established and frames
	// are being read.
	StateConnected
	// StateDisconnecting indicates a manual Close is in progress.
	StateDisconnecting
	// StateDisconnected indicates the stream is closed, either
	// manually or by an error.
	StateDisconnected
)

// State represents the state of the event stream connection.
type State int

// Event is one change notification for a subscribed model. Delta holds
// the changed fields of the model as a partial document; consumers
// merge it into their local copy.
type Event struct {
	ModelID models.ID
	Delta   map[string]json.RawMessage
}

// frame is the wire format of the event stream. The client sends
// subscribe/unsubscribe frames and receives ack, error and event
// frames back.
type frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	ModelID models.ID       `json:"modelId,omitempty"`
	Delta   json.RawMessage `json:"delta,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type Connection struct {
	config *connection.Config

	conn *gorilla.Conn
	// connLock guards writes to conn. Reads happen only on the
	// readLoop goroutine and need no lock.
	connLock sync.Mutex

	stateLock sync.RWMutex
	state     State

	// Timeout bounds waiting for the subscribe acknowledgement frame.
	Timeout time.Duration

	logger logger.Logger

	ackChannels     map[string]chan error
	ackChannelsLock sync.RWMutex

	subscriptions     map[models.ID]chan Event
	subscriptionsLock sync.RWMutex

	closeCh chan struct{}
}

func New(config *connection.Config) *Connection {
	log := config.Logger
	if log == nil {
		log = logger.New(nil)
	}
	return &Connection{
		config:        config,
		Timeout:       constants.DefaultWSTimeout,
		logger:        log,
		ackChannels:   make(map[string]chan error),
		subscriptions: make(map[models.ID]chan Event),
		state:         StatePending,
	}
}

// Connect dials the event stream endpoint and starts reading frames.
func (c *Connection) Connect(ctx context.Context) error {
	if c.config.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if c.config.Key == "" || c.config.Token == "" {
		return constants.ErrNoCredentials
	}

	c.stateLock.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.stateLock.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.stateLock.Unlock()

	conn, resp, err := DefaultDialer.DialContext(ctx, c.endpointURL(), nil)
	if err != nil {
		c.setState(StateDisconnected)
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", constants.ErrUnauthorized, err)
		}
		return err
	}

	c.connLock.Lock()
	c.conn = conn
	c.connLock.Unlock()
	c.closeCh = make(chan struct{})
	c.setState(StateConnected)

	go c.readLoop()

	return nil
}

func (c *Connection) Close() error {
	c.stateLock.Lock()
	if c.state != StateConnected {
		c.stateLock.Unlock()
		return nil
	}
	c.state = StateDisconnecting
	c.stateLock.Unlock()

	close(c.closeCh)

	c.connLock.Lock()
	defer c.connLock.Unlock()
	err := c.conn.WriteMessage(
		gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""),
	)
	if closeErr := c.conn.Close(); err == nil {
		err = closeErr
	}
	c.setState(StateDisconnected)
	return err
}

func (c *Connection) State() State {
	c.stateLock.RLock()
	defer c.stateLock.RUnlock()
	return c.state
}

// Subscribe registers interest in changes to the given model and
// returns the channel events are delivered on. The channel is buffered;
// a consumer that stops draining it loses events rather than blocking
// the read loop.
func (c *Connection) Subscribe(ctx context.Context, id models.ID) (chan Event, error) {
	if c.State() != StateConnected {
		return nil, constants.ErrClosed
	}

	ch, err := c.createSubscription(id)
	if err != nil {
		return nil, err
	}

	if err := c.request(ctx, &frame{Type: "subscribe", ID: uuid.NewString(), ModelID: id}); err != nil {
		c.removeSubscription(id)
		return nil, err
	}
	return ch, nil
}

// Unsubscribe tells the service to stop sending events for the model
// and closes the delivery channel.
func (c *Connection) Unsubscribe(ctx context.Context, id models.ID) error {
	if c.State() != StateConnected {
		return constants.ErrClosed
	}
	if err := c.request(ctx, &frame{Type: "unsubscribe", ID: uuid.NewString(), ModelID: id}); err != nil {
		return err
	}
	c.removeSubscription(id)
	return nil
}

// request writes one frame and waits for its acknowledgement.
func (c *Connection) request(ctx context.Context, f *frame) error {
	ackCh, err := c.createAckChannel(f.ID)
	if err != nil {
		return err
	}
	defer c.removeAckChannel(f.ID)

	if err := c.write(f); err != nil {
		return err
	}

	timeout := time.NewTimer(c.Timeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return constants.ErrTimeout
	case <-c.closeCh:
		return constants.ErrClosed
	case err := <-ackCh:
		return err
	}
}

func (c *Connection) write(f *frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil {
		return constants.ErrClosed
	}
	return c.conn.WriteMessage(gorilla.TextMessage, data)
}

func (c *Connection) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closeCh:
				// manual close, already handled
			default:
				c.logger.Error("event stream read failed", "error", err.Error())
				c.setState(StateDisconnected)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("dropping malformed frame", "error", err.Error())
			continue
		}

		switch f.Type {
		case "ack":
			c.deliverAck(f.ID, nil)
		case "error":
			c.deliverAck(f.ID, fmt.Errorf("event stream: %s", f.Error))
		case "event":
			c.deliverEvent(&f)
		default:
			c.logger.Warn("dropping frame of unknown type", "type", f.Type)
		}
	}
}

func (c *Connection) deliverAck(id string, result error) {
	c.ackChannelsLock.RLock()
	ch, ok := c.ackChannels[id]
	c.ackChannelsLock.RUnlock()
	if !ok {
		c.logger.Warn("ack for unknown request", "id", id)
		return
	}
	// The channel holds one result. A duplicate ack must not block the
	// read loop.
	select {
	case ch <- result:
	default:
		c.logger.Warn("dropping duplicate ack", "id", id)
	}
}

func (c *Connection) deliverEvent(f *frame) {
	var delta map[string]json.RawMessage
	if len(f.Delta) > 0 {
		if err := json.Unmarshal(f.Delta, &delta); err != nil {
			c.logger.Warn("dropping event with malformed delta", "modelId", f.ModelID.String())
			return
		}
	}

	c.subscriptionsLock.RLock()
	ch, ok := c.subscriptions[f.ModelID]
	c.subscriptionsLock.RUnlock()
	if !ok {
		return
	}

	select {
	case ch <- Event{ModelID: f.ModelID, Delta: delta}:
	default:
		c.logger.Warn("subscriber not draining, event dropped", "modelId", f.ModelID.String())
	}
}

func (c *Connection) createAckChannel(id string) (chan error, error) {
	c.ackChannelsLock.Lock()
	defer c.ackChannelsLock.Unlock()
	if _, ok := c.ackChannels[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}
	ch := make(chan error, 1)
	c.ackChannels[id] = ch
	return ch, nil
}

func (c *Connection) removeAckChannel(id string) {
	c.ackChannelsLock.Lock()
	defer c.ackChannelsLock.Unlock()
	delete(c.ackChannels, id)
}

func (c *Connection) createSubscription(id models.ID) (chan Event, error) {
	c.subscriptionsLock.Lock()
	defer c.subscriptionsLock.Unlock()
	if _, ok := c.subscriptions[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}
	ch := make(chan Event, 64)
	c.subscriptions[id] = ch
	return ch, nil
}

func (c *Connection) removeSubscription(id models.ID) {
	c.subscriptionsLock.Lock()
	defer c.subscriptionsLock.Unlock()
	if ch, ok := c.subscriptions[id]; ok {
		close(ch)
		delete(c.subscriptions, id)
	}
}

func (c *Connection) setState(s State) {
	c.stateLock.Lock()
	c.state = s
	c.stateLock.Unlock()
}

// endpointURL derives the websocket endpoint from the REST base URL.
func (c *Connection) endpointURL() string {
	base := c.config.BaseURL
	switch {
	case strings.HasPrefix(base, constants.HTTPSecureScheme+"://"):
		base = constants.WebsocketSecureScheme + strings.TrimPrefix(base, constants.HTTPSecureScheme)
	case strings.HasPrefix(base, constants.HTTPScheme+"://"):
		base = constants.WebsocketScheme + strings.TrimPrefix(base, constants.HTTPScheme)
	}

	query := url.Values{}
	query.Set("key", c.config.Key)
	query.Set("token", c.config.Token)
	return base + "/1/events?" + query.Encode()
}
