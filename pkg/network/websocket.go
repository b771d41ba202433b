package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/snek/pkg/log"
	"nhooyr.io/websocket"
)

const (
	// DefaultSubscriberBuffer is the number of frames queued per subscriber before it is dropped
	DefaultSubscriberBuffer = 16
	// DefaultWriteTimeout bounds a single frame write to a subscriber
	DefaultWriteTimeout = 5 * time.Second
)

// Hub fans out rendered frames to websocket subscribers.
// A subscriber that falls behind is disconnected instead of slowing the others.
type Hub struct {
	subscriberBuffer int
	writeTimeout     time.Duration

	lock        sync.Mutex
	subscribers map[*Subscriber]struct{}
	last        []byte
}

type NewHubOptions struct {
	SubscriberBuffer int
	WriteTimeout     time.Duration
}

// Subscriber receives every frame broadcast after it subscribed.
type Subscriber struct {
	frames    chan []byte
	closeSlow func()
}

// Frames returns the channel of frames for the subscriber.
func (s *Subscriber) Frames() <-chan []byte {
	return s.frames
}

func NewHub(opts NewHubOptions) *Hub {
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = DefaultSubscriberBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	return &Hub{
		subscriberBuffer: opts.SubscriberBuffer,
		writeTimeout:     opts.WriteTimeout,
		subscribers:      make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a subscriber and queues the latest frame for it, if any.
// closeSlow is called, at most once, if the subscriber cannot keep up with the
// broadcast rate.
func (h *Hub) Subscribe(closeSlow func()) *Subscriber {
	s := &Subscriber{
		frames:    make(chan []byte, h.subscriberBuffer),
		closeSlow: closeSlow,
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	if h.last != nil {
		s.frames <- h.last
	}
	h.subscribers[s] = struct{}{}
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.subscribers, s)
}

// Broadcast stores the frame as the latest one and queues it for every subscriber.
func (h *Hub) Broadcast(frame []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.last = frame
	for s := range h.subscribers {
		select {
		case s.frames <- frame:
		default:
			delete(h.subscribers, s)
			if s.closeSlow != nil {
				go s.closeSlow()
			}
		}
	}
}

// Last returns the most recent frame, or nil before the first broadcast.
func (h *Hub) Last() []byte {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.last
}

// Size returns the number of subscribers.
func (h *Hub) Size() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.subscribers)
}

// ServeStream upgrades the request to a websocket and writes frames to it until
// the client goes away or the request context is done. The client may not send data.
func (h *Hub) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	log.Debug("New WebSocket subscriber from %s", r.RemoteAddr)

	err = h.stream(r.Context(), conn)
	if errors.Is(err, context.Canceled) {
		return
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Trace("WebSocket subscriber %s closed", r.RemoteAddr)
		return
	}
	if err != nil {
		log.Debug("WebSocket subscriber %s disconnected: %v", r.RemoteAddr, err)
	}
}

func (h *Hub) stream(ctx context.Context, conn *websocket.Conn) error {
	// a write only connection still has to read to handle control frames
	ctx = conn.CloseRead(ctx)

	s := h.Subscribe(func() {
		conn.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with frames")
	})
	defer h.Unsubscribe(s)

	for {
		select {
		case frame := <-s.frames:
			if err := h.write(ctx, conn, frame); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, frame []byte) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("failed to write frame to WebSocket connection: %w", err)
	}
	return nil
}
