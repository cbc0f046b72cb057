package sse

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
)

// 事件名
const (
	EventConnected = "connected"
	EventConsole   = "console"
)

// Client SSE客户端，主题为所属连接ID
type Client struct {
	ID        string
	Channel   chan []byte
	Role      string
	Topic     string
	CreatedAt time.Time
}

// Broker 管理所有SSE连接
type Broker struct {
	clients        map[string]*Client
	topics         map[string]map[string]*Client
	newClients     chan *Client
	closingClients chan string
	messages       chan *Message
	mutex          sync.RWMutex
}

// Message SSE消息结构
type Message struct {
	Topic string      `json:"topic"`
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	ID    string      `json:"id,omitempty"`
	Retry int         `json:"retry,omitempty"`
}

// GlobalBroker 全局SSE代理
var GlobalBroker = NewBroker()

// NewBroker 创建新的SSE代理
func NewBroker() *Broker {
	return &Broker{
		clients:        make(map[string]*Client),
		topics:         make(map[string]map[string]*Client),
		newClients:     make(chan *Client),
		closingClients: make(chan string),
		messages:       make(chan *Message, 64),
	}
}

// Start 启动SSE代理
func (b *Broker) Start() {
	go b.listen()
}

func (b *Broker) listen() {
	for {
		select {
		case client := <-b.newClients:
			b.mutex.Lock()
			b.clients[client.ID] = client
			if _, ok := b.topics[client.Topic]; !ok {
				b.topics[client.Topic] = make(map[string]*Client)
			}
			b.topics[client.Topic][client.ID] = client
			b.mutex.Unlock()

			log.Printf("SSE客户端已连接: ID=%s, 主题=%s", client.ID, client.Topic)

		case clientID := <-b.closingClients:
			b.removeClient(clientID)

		case message := <-b.messages:
			var slow []string

			b.mutex.RLock()
			targets := b.clients
			if message.Topic != "" {
				targets = b.topics[message.Topic]
			}
			for _, client := range targets {
				if !b.sendMessageToClient(client, message) {
					slow = append(slow, client.ID)
				}
			}
			b.mutex.RUnlock()

			// 缓冲区已满的客户端直接断开，由浏览器重连
			for _, id := range slow {
				b.removeClient(id)
			}
		}
	}
}

func (b *Broker) removeClient(clientID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	client, ok := b.clients[clientID]
	if !ok {
		return
	}
	if topicClients, ok := b.topics[client.Topic]; ok {
		delete(topicClients, client.ID)
		if len(topicClients) == 0 {
			delete(b.topics, client.Topic)
		}
	}
	close(client.Channel)
	delete(b.clients, clientID)

	log.Printf("SSE客户端已断开连接: ID=%s, 主题=%s", client.ID, client.Topic)
}

// FormatMessage 按 text/event-stream 格式编码消息
func FormatMessage(message *Message) ([]byte, error) {
	dataJSON, err := sonic.Marshal(message.Data)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	if message.Event != "" {
		fmt.Fprintf(&sb, "event: %s\n", message.Event)
	}
	if message.ID != "" {
		fmt.Fprintf(&sb, "id: %s\n", message.ID)
	}
	if message.Retry > 0 {
		fmt.Fprintf(&sb, "retry: %d\n", message.Retry)
	}
	fmt.Fprintf(&sb, "data: %s\n\n", dataJSON)
	return []byte(sb.String()), nil
}

// sendMessageToClient 非阻塞写入客户端通道，缓冲区已满时返回 false
func (b *Broker) sendMessageToClient(client *Client, message *Message) bool {
	payload, err := FormatMessage(message)
	if err != nil {
		log.Printf("编码SSE消息失败: %v", err)
		return true
	}

	select {
	case client.Channel <- payload:
		return true
	default:
		return false
	}
}

// ServeHTTP 处理SSE连接，只推送当前连接自己的控制台记录
func (b *Broker) ServeHTTP(c *gin.Context) {
	topic := middleware.GetCurrentProfileID(c)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	client := &Client{
		ID:        uuid.New().String(),
		Channel:   make(chan []byte, 256),
		Role:      middleware.GetCurrentRole(c),
		Topic:     topic,
		CreatedAt: time.Now(),
	}

	b.sendMessageToClient(client, &Message{
		Event: EventConnected,
		Data: map[string]interface{}{
			"client_id": client.ID,
			"role":      client.Role,
			"time":      client.CreatedAt.Format(time.RFC3339),
		},
	})
	b.newClients <- client

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			b.closingClients <- client.ID
			return
		case msg, ok := <-client.Channel:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(msg); err != nil {
				b.closingClients <- client.ID
				return
			}
			c.Writer.Flush()
		}
	}
}

// Publish 发布消息到所有客户端或特定主题
func (b *Broker) Publish(message *Message) {
	b.messages <- message
}

// PublishEntries 把新追加的控制台记录推送给同一连接的客户端
func (b *Broker) PublishEntries(profileID string, entries []model.ConsoleEntry) {
	if len(entries) == 0 {
		return
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	b.Publish(&Message{
		Topic: profileID,
		Event: EventConsole,
		ID:    strconv.FormatUint(uint64(entries[len(entries)-1].ID), 10),
		Data:  map[string]interface{}{"console": lines},
	})
}

// GetClientCount 获取连接的客户端总数
func (b *Broker) GetClientCount() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.clients)
}

// GetTopicClientCount 获取特定主题的客户端数
func (b *Broker) GetTopicClientCount(topic string) int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.topics[topic])
}
