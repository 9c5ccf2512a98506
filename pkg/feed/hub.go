// Package feed 通过 WebSocket 向观察者广播游戏事件
package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gonewx/towerdefense/pkg/events"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// 每个客户端的待发送队列长度
	clientBuffer = 256

	// 等待 Run 循环处理的广播队列长度
	broadcastBuffer = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Envelope 发送给观察者的单条消息
type Envelope struct {
	ID        ulid.ULID     `json:"id"`
	Sequence  uint64        `json:"seq"`
	Timestamp time.Time     `json:"timestamp"`
	Event     events.Record `json:"event"`
}

// Client 一个 WebSocket 观察者连接
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub 维护观察者连接并广播事件
//
// 模拟在主 goroutine 中调用 Publish，Publish 从不阻塞：
// 广播队列已满时丢弃消息，客户端发送队列已满时断开该客户端。
// 连接的注册、注销与广播都在 Run 循环中串行处理。
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	sequence atomic.Uint64
	count    atomic.Int64
	dropped  atomic.Uint64
}

// NewHub 创建广播中心；需要在独立 goroutine 中调用 Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 事件循环，ctx 取消时关闭所有连接并返回
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			log.Printf("[Feed] Client connected (total clients: %d)", len(h.clients))

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.unregisterClient(client)
				}
			}
		}
	}
}

// Attach 将总线上的所有事件转发给观察者
func (h *Hub) Attach(bus *events.EventBus) events.Subscription {
	return bus.SubscribeAll(func(e events.GameEvent) {
		h.Publish(events.Describe(e))
	})
}

// Publish 广播一条事件记录
func (h *Hub) Publish(record events.Record) {
	env := Envelope{
		ID:        ulid.Make(),
		Sequence:  h.sequence.Add(1),
		Timestamp: time.Now().UTC(),
		Event:     record,
	}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[Feed] Failed to marshal %s: %v", record.Kind, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int { return int(h.count.Load()) }

// Dropped 因广播队列已满而丢弃的消息数
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// ServeHTTP 将请求升级为 WebSocket 连接
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Feed] WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
	log.Printf("[Feed] Client disconnected (remaining clients: %d)", len(h.clients))
}

// readPump 只用于处理 pong 与关闭；观察者不发送指令
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Feed] WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump 每条事件作为一个独立的文本消息发送
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
