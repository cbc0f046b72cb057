package websocket

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"city.newnan/rcon-console/internal/model"
)

const (
	heartbeatTimeout  = 60 * time.Second
	heartbeatInterval = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 cors 中间件与Token控制
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client WebSocket客户端，房间为所属连接ID
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan []byte
	ProfileID   string
	Role        string
	Manager     *Manager
	lastPingAt  atomic.Int64
	Closed      bool
	ClosedMutex sync.Mutex
}

// touch 记录最近一次收到消息的时间
func (c *Client) touch() {
	c.lastPingAt.Store(time.Now().UnixNano())
}

// LastPingAt 最近一次收到消息的时间
func (c *Client) LastPingAt() time.Time {
	return time.Unix(0, c.lastPingAt.Load())
}

// trySend 非阻塞发送，客户端已关闭或缓冲区已满时返回 false
func (c *Client) trySend(data []byte) bool {
	c.ClosedMutex.Lock()
	defer c.ClosedMutex.Unlock()
	if c.Closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// markClosed 关闭发送通道，只执行一次
func (c *Client) markClosed() bool {
	c.ClosedMutex.Lock()
	defer c.ClosedMutex.Unlock()
	if c.Closed {
		return false
	}
	c.Closed = true
	close(c.Send)
	return true
}

// Manager 管理 WebSocket 连接
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	mutex      sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
}

// BroadcastMessage 广播消息结构
type BroadcastMessage struct {
	Room    string      `json:"room,omitempty"`
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
	Exclude string      `json:"exclude,omitempty"`
}

// GlobalManager 全局 WebSocket 管理器
var GlobalManager = NewManager()

// NewManager 创建新的管理器
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 64),
	}
}

// Start 启动 WebSocket 管理器
func (m *Manager) Start() {
	go m.run()
}

func (m *Manager) run() {
	heartbeatTicker := time.NewTicker(heartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			if _, ok := m.rooms[client.ProfileID]; !ok {
				m.rooms[client.ProfileID] = make(map[string]*Client)
			}
			m.rooms[client.ProfileID][client.ID] = client
			m.mutex.Unlock()
			log.Printf("客户端注册: %s, 连接: %s", client.ID, client.ProfileID)

		case client := <-m.unregister:
			if client == nil {
				continue
			}
			m.remove(client)

		case message := <-m.broadcast:
			var slow []*Client

			m.mutex.RLock()
			targets := m.clients
			if message.Room != "" {
				targets = m.rooms[message.Room]
			}
			data := MarshalMessage(message.Type, message.Content)
			for id, client := range targets {
				if id == message.Exclude {
					continue
				}
				if !client.trySend(data) {
					slow = append(slow, client)
				}
			}
			m.mutex.RUnlock()

			for _, client := range slow {
				m.remove(client)
			}

		case <-heartbeatTicker.C:
			m.checkHeartbeats()
		}
	}
}

// remove 从管理器移除客户端并关闭发送通道，writePump 随后关闭连接
func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		if room, ok := m.rooms[client.ProfileID]; ok {
			delete(room, client.ID)
			if len(room) == 0 {
				delete(m.rooms, client.ProfileID)
			}
		}
	}
	m.mutex.Unlock()

	if client.markClosed() {
		log.Printf("客户端注销: %s, 连接: %s", client.ID, client.ProfileID)
	}
}

// checkHeartbeats 断开超时未响应的客户端
func (m *Manager) checkHeartbeats() {
	timeout := time.Now().Add(-heartbeatTimeout)

	var expired []*Client
	m.mutex.RLock()
	for _, client := range m.clients {
		if client.LastPingAt().Before(timeout) {
			expired = append(expired, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range expired {
		log.Printf("客户端 %s 心跳超时，正在断开连接", client.ID)
		m.remove(client)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

// GetRoomClients 获取房间中的所有客户端
func (m *Manager) GetRoomClients(room string) []*Client {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	clients := make([]*Client, 0, len(m.rooms[room]))
	for _, client := range m.rooms[room] {
		clients = append(clients, client)
	}
	return clients
}

// GetClientCount 获取连接的客户端总数
func (m *Manager) GetClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Broadcast 广播消息
func (m *Manager) Broadcast(message *BroadcastMessage) {
	m.broadcast <- message
}

// PublishEntries 把新追加的控制台记录推送给同一连接的所有客户端
func (m *Manager) PublishEntries(profileID string, entries []model.ConsoleEntry) {
	if len(entries) == 0 {
		return
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	m.Broadcast(&BroadcastMessage{
		Room:    profileID,
		Type:    MessageTypeEvent,
		Content: map[string]interface{}{"console": lines},
	})
}

// Register 注册客户端
func (m *Manager) Register(client *Client) {
	m.register <- client
}

// Unregister 注销客户端
func (m *Manager) Unregister(client *Client) {
	m.unregister <- client
}
