package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/Injajul/Foodify2/services"
	"github.com/Injajul/Foodify2/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Frame is what subscribers receive.
type Frame struct {
	Type  string              `json:"type"`
	Order *services.OrderView `json:"order"`
}

const FrameOrderUpdated = "order.updated"

// client is one websocket connection of one user.
type client struct {
	userID uint
	conn   *websocket.Conn
	send   chan Frame
}

type delivery struct {
	userID uint
	frame  Frame
}

// OrderHub fans committed order changes out to the connections of the
// buyer and of every seller involved. Publishing never blocks the caller.
type OrderHub struct {
	clients    map[uint]map[*client]bool // userID -> connections
	publish    chan delivery
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewOrderHub(log *zap.Logger) *OrderHub {
	return &OrderHub{
		clients:    make(map[uint]map[*client]bool),
		publish:    make(chan delivery, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until Stop is called.
func (h *OrderHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.userID] == nil {
				h.clients[c.userID] = make(map[*client]bool)
			}
			h.clients[c.userID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case d := <-h.publish:
			h.mu.Lock()
			for c := range h.clients[d.userID] {
				select {
				case c.send <- d.frame:
				default:
					// slow reader; cut it loose rather than stall everyone
					h.log.Warn("ws client too slow, dropping", zap.Uint("user_id", c.userID))
					h.drop(c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					h.drop(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *OrderHub) Stop() { close(h.done) }

// caller holds h.mu
func (h *OrderHub) drop(c *client) {
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// OrderUpdated implements services.OrderNotifier. The buyer gets the full
// order, each seller only their own groups.
func (h *OrderHub) OrderUpdated(u services.OrderUpdate) {
	if u.Order == nil {
		return
	}
	h.enqueue(u.Order.UserID, Frame{Type: FrameOrderUpdated, Order: u.Order})
	for sellerID, restaurantIDs := range u.Sellers {
		if sellerID == u.Order.UserID {
			continue
		}
		h.enqueue(sellerID, Frame{Type: FrameOrderUpdated, Order: u.Order.ForRestaurants(restaurantIDs)})
	}
}

func (h *OrderHub) enqueue(userID uint, f Frame) {
	h.mu.RLock()
	_, online := h.clients[userID]
	h.mu.RUnlock()
	if !online {
		return
	}
	select {
	case h.publish <- delivery{userID: userID, frame: f}:
	default:
		h.log.Warn("order update dropped, hub backlog full", zap.Uint("user_id", userID))
	}
}

// Connections reports how many sockets a user has open.
func (h *OrderHub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws/orders
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	userID := utils.CurrentUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	cl := &client{userID: userID, conn: conn, send: make(chan Frame, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(cl)
	go h.readPump(cl)
}

// readPump only watches for the peer going away; clients send nothing.
func (h *OrderHub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *OrderHub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(f); err != nil {
				h.log.Debug("ws write failed", zap.Uint("user_id", c.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
