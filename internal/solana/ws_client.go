package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// MintEvent is a transaction that initialized a new SPL mint, observed live.
type MintEvent struct {
	Signature string
	Slot      int64
	Logs      []string
}

// MintWatcher subscribes to token-program logs over WebSocket and emits
// InitializeMint transactions. It reconnects with backoff and resubscribes
// on connection loss.
type MintWatcher struct {
	endpoint string
	config   WSConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	events chan MintEvent

	done chan struct{}
	wg   sync.WaitGroup
}

// NewMintWatcher connects to the endpoint and starts the watch loops.
// Events are delivered on Events() until Close.
func NewMintWatcher(ctx context.Context, endpoint string, config *WSConfig) (*MintWatcher, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	w := &MintWatcher{
		endpoint: endpoint,
		config:   cfg,
		events:   make(chan MintEvent, 1024),
		done:     make(chan struct{}),
	}

	if err := w.connect(ctx); err != nil {
		return nil, err
	}
	if err := w.subscribe(); err != nil {
		w.conn.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.readLoop()

	w.wg.Add(1)
	go w.pingLoop()

	return w, nil
}

// Events returns the mint event stream. Closed by Close.
func (w *MintWatcher) Events() <-chan MintEvent {
	return w.events
}

func (w *MintWatcher) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()
	return nil
}

// subscribe sends a logsSubscribe mentioning the token program.
func (w *MintWatcher) subscribe() error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      w.requestID.Add(1),
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{TokenProgram}},
			map[string]string{"commitment": "confirmed"},
		},
	}

	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("not connected")
	}
	w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := w.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close shuts down the watcher and closes the event channel.
func (w *MintWatcher) Close() error {
	if w.closed.Swap(true) {
		return nil // Already closed
	}

	close(w.done)

	w.connMu.Lock()
	if w.conn != nil {
		w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		w.conn.Close()
	}
	w.connMu.Unlock()

	w.wg.Wait()
	close(w.events)
	return nil
}

// readLoop reads messages and emits InitializeMint events, reconnecting
// with exponential backoff on failure.
func (w *MintWatcher) readLoop() {
	defer w.wg.Done()

	delay := w.config.ReconnectDelay

	for !w.closed.Load() {
		w.connMu.Lock()
		conn := w.conn
		w.connMu.Unlock()

		if conn == nil {
			select {
			case <-w.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if w.closed.Load() {
				return
			}
			// Reconnect with backoff, then resubscribe
			w.connMu.Lock()
			w.conn = nil
			w.connMu.Unlock()
			conn.Close()

			select {
			case <-w.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > w.config.MaxReconnectDelay {
				delay = w.config.MaxReconnectDelay
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			if err := w.connect(ctx); err == nil {
				if err := w.subscribe(); err == nil {
					delay = w.config.ReconnectDelay
				}
			}
			cancel()
			continue
		}

		w.dispatch(msg)
	}
}

// dispatch parses a logsNotification and emits it if it initialized a mint.
func (w *MintWatcher) dispatch(msg []byte) {
	var note wsLogsNotification
	if err := json.Unmarshal(msg, &note); err != nil {
		return
	}
	if note.Method != "logsNotification" || note.Params == nil {
		return
	}

	value := note.Params.Result.Value
	if value.Err != nil {
		return
	}

	initialized := false
	for _, line := range value.Logs {
		if strings.Contains(line, "InitializeMint") {
			initialized = true
			break
		}
	}
	if !initialized {
		return
	}

	event := MintEvent{
		Signature: value.Signature,
		Slot:      note.Params.Result.Context.Slot,
		Logs:      value.Logs,
	}

	select {
	case w.events <- event:
	case <-w.done:
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (w *MintWatcher) pingLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.connMu.Lock()
			conn := w.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
				conn.WriteMessage(websocket.PingMessage, nil)
			}
			w.connMu.Unlock()
		}
	}
}

// wsRequest is a JSON-RPC 2.0 request over WebSocket.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsLogsNotification is the push payload for logsSubscribe.
type wsLogsNotification struct {
	Method string `json:"method"`
	Params *struct {
		Result struct {
			Context struct {
				Slot int64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Signature string      `json:"signature"`
				Err       interface{} `json:"err"`
				Logs      []string    `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}
