package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub owns the set of connected subscribers. All sends to and closes of a
// subscriber's queue happen on the Run goroutine.
type Hub struct {
	cfg    utils.SocketConfig
	logger *zap.Logger

	clients    map[*subscriber]struct{}
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte

	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(cfg utils.SocketConfig, logger *zap.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[*subscriber]struct{}),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan []byte, 256),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.clients[s] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("subscriber connected",
				zap.String("subscriber", s.id),
				zap.String("addr", s.addr),
				zap.Int("subscribers", count))

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				s.writePump()
			}()
			go func() {
				defer h.wg.Done()
				s.readPump()
			}()

		case s := <-h.unregister:
			h.remove(s, "disconnected")

		case frame := <-h.broadcast:
			h.fanOut(frame)
		}
	}
}

// Publish encodes and queues an event. Encoding failures are logged and dropped.
func (h *Hub) Publish(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		h.logger.Warn("drop event", zap.String("event", event), zap.Error(err))
		return
	}
	h.Broadcast(frame)
}

// Broadcast queues frame for every connected subscriber without blocking.
func (h *Hub) Broadcast(frame []byte) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.broadcast <- frame:
	default:
		h.logger.Warn("broadcast queue full; dropping event", zap.Int("bytes", len(frame)))
	}
}

// ServeWS upgrades the request and registers the connection as a subscriber.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &subscriber{
		id:   uuid.NewString(),
		addr: r.RemoteAddr,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		hub:  h,
	}

	select {
	case h.register <- s:
	case <-h.ctx.Done():
		_ = conn.Close()
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops the hub, closes every subscriber and waits for their pumps.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.logger.Info("notification hub stopped")
		return nil
	case <-time.After(timeout):
		h.logger.Warn("notification hub shutdown timed out")
		return context.DeadlineExceeded
	}
}

func (h *Hub) fanOut(frame []byte) {
	h.mu.RLock()
	targets := make([]*subscriber, 0, len(h.clients))
	for s := range h.clients {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.send <- frame:
		default:
			h.remove(s, "send buffer full")
		}
	}
}

func (h *Hub) remove(s *subscriber, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, s)
	count := len(h.clients)
	h.mu.Unlock()

	close(s.send)
	h.logger.Info("subscriber disconnected",
		zap.String("subscriber", s.id),
		zap.String("reason", reason),
		zap.Int("subscribers", count))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.clients))
	for s := range h.clients {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		h.remove(s, "server shutdown")
		_ = s.conn.Close()
	}
}
