// internal/transport/ws/conn.go
//
// WebSocket transport for match clients.
// Responsibilities:
//   - Upgrade HTTP requests and give each socket a stable uuid.
//   - One goroutine reading (readPump), one writing (writePump).
//   - Bounded, non-blocking Send; full buffer is an error, never a stall.
//   - Write deadlines, ping/pong keepalive, inbound token-bucket rate limiting.

package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Handler receives connection lifecycle events.
type Handler interface {
	Open(c *Conn)
	Message(c *Conn, text bool, payload []byte)
	Close(c *Conn)
}

// Options tune a connection.
type Options struct {
	SendBuffer int
	Rate       rate.Limit
	Burst      int
	// OnLimited is called, on the read goroutine, for each dropped inbound message.
	OnLimited func(c *Conn)
}

// Conn is one client socket.
type Conn struct {
	id      string
	userID  string
	ws      *websocket.Conn
	send    chan []byte
	done    chan struct{}
	limiter *rate.Limiter

	closeOnce sync.Once
}

// ID is the uuid issued on upgrade.
func (c *Conn) ID() string { return c.id }

// UserID is the authenticated account, "" for guests.
func (c *Conn) UserID() string { return c.userID }

// Send marshals v and queues it. It never blocks.
func (c *Conn) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops the connection after flushing what is already queued.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Serve upgrades the request, runs the pumps and blocks until the socket is gone.
func Serve(up *websocket.Upgrader, w http.ResponseWriter, r *http.Request, userID string, h Handler, opts Options) error {
	sock, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if opts.Rate <= 0 {
		opts.Rate = rate.Inf
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	c := &Conn{
		id:      uuid.NewString(),
		userID:  userID,
		ws:      sock,
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(opts.Rate, opts.Burst),
	}
	log.Debug().Str("conn", c.id).Str("user", userID).Msg("websocket opened")

	go c.writePump()
	h.Open(c)
	c.readPump(h, opts.OnLimited)
	return nil
}

func (c *Conn) readPump(h Handler, onLimited func(*Conn)) {
	defer func() {
		h.Close(c)
		_ = c.Close()
		log.Debug().Str("conn", c.id).Msg("websocket closed")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("conn", c.id).Msg("websocket read")
			}
			return
		}
		if !c.limiter.Allow() {
			if onLimited != nil {
				onLimited(c)
			}
			continue
		}
		h.Message(c, mt == websocket.TextMessage, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever was queued before Close.
func (c *Conn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(mt int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(mt, data)
}
