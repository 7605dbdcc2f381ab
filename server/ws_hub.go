package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Wsine/picgo-helper/core"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 16
)

// wsMessage 推送给客户端的一条事件，Type 为事件总线上的主题名
type wsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsClient 一个 WebSocket 连接，send 由 hub 关闭
type wsClient struct {
	hub  *wsHub
	conn *websocket.Conn
	send chan []byte
}

// wsHub 订阅事件总线的全部主题，并把事件转发给所有已连接的客户端
// 客户端集合只在 run 协程内读写
type wsHub struct {
	clients map[*wsClient]struct{}
	count   atomic.Int64

	events chan []byte
	join   chan *wsClient
	leave  chan *wsClient
	done   chan struct{}

	bus    *core.EventBus
	subs   []core.Subscription
	logger *slog.Logger
}

func newWSHub(bus *core.EventBus, logger *slog.Logger) *wsHub {
	h := &wsHub{
		clients: make(map[*wsClient]struct{}),
		events:  make(chan []byte, 64),
		join:    make(chan *wsClient),
		leave:   make(chan *wsClient),
		done:    make(chan struct{}),
		bus:     bus,
		logger:  logger,
	}
	if bus == nil {
		return h
	}
	for _, topic := range core.Topics {
		topic := topic
		h.subs = append(h.subs, bus.On(topic, func(payload any) {
			h.Broadcast(topic, payload)
		}))
	}
	return h
}

func (h *wsHub) run() {
	for {
		select {
		case <-h.done:
			h.shutdown()
			return
		case c := <-h.join:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("事件推送客户端已连接", "clients", len(h.clients))
		case c := <-h.leave:
			if h.drop(c) {
				h.logger.Debug("事件推送客户端已断开", "clients", len(h.clients))
			}
		case msg := <-h.events:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 发送缓冲已满，视为客户端卡住，直接断开
					h.drop(c)
					h.logger.Warn("事件推送客户端过慢，已断开")
				}
			}
		}
	}
}

// drop 移除客户端并关闭其发送通道，只能在 run 协程内调用
func (h *wsHub) drop(c *wsClient) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
	return true
}

func (h *wsHub) shutdown() {
	deadline := time.Now().Add(2 * time.Second)
	closing := websocket.FormatCloseMessage(websocket.CloseGoingAway, "服务关闭")
	for c := range h.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage, closing, deadline)
		h.drop(c)
	}
	h.logger.Debug("事件推送已停止")
}

// Close 取消事件订阅并断开所有客户端，只能调用一次
func (h *wsHub) Close() {
	for _, sub := range h.subs {
		h.bus.Off(sub)
	}
	h.subs = nil
	close(h.done)
}

func (h *wsHub) clientCount() int {
	return int(h.count.Load())
}

// Broadcast 把事件编码后交给 run 协程分发；没有客户端或队列已满时丢弃
func (h *wsHub) Broadcast(topic string, data any) {
	if h.clientCount() == 0 {
		return
	}
	payload, err := json.Marshal(wsMessage{Type: topic, Data: data})
	if err != nil {
		h.logger.Error("事件编码失败", "topic", topic, "error", err)
		return
	}
	select {
	case h.events <- payload:
	default:
		h.logger.Warn("事件推送队列已满，丢弃事件", "topic", topic)
	}
}

// 本地服务，不校验 Origin；跨域访问由 CORS 配置控制
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (h *wsHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket 握手失败", "error", err)
		return
	}
	c := &wsClient{hub: h, conn: conn, send: make(chan []byte, wsSendBuffer)}
	select {
	case h.join <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writeLoop()
	go c.readLoop()
}

// writeLoop 发送事件并定时 ping，send 被关闭时发出关闭帧
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				kind = websocket.CloseMessage
			} else {
				kind, data = websocket.TextMessage, msg
			}
		case <-ticker.C:
			kind = websocket.PingMessage
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteMessage(kind, data); err != nil || kind == websocket.CloseMessage {
			return
		}
	}
}

// readLoop 客户端不发送业务消息，这里只处理 pong 与断开
func (c *wsClient) readLoop() {
	defer func() {
		select {
		case c.hub.leave <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
