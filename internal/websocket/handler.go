package websocket

import (
	"context"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"city.newnan/rcon-console/internal/middleware"
)

// MessageType 消息类型
const (
	MessageTypePing     = "ping"     // 心跳消息
	MessageTypePong     = "pong"     // 心跳响应
	MessageTypeJoin     = "join"     // 连接成功
	MessageTypeError    = "error"    // 错误
	MessageTypeCommand  = "command"  // 执行命令
	MessageTypeResponse = "response" // 命令结果
	MessageTypeEvent    = "event"    // 控制台记录更新
)

// Message WebSocket消息结构
type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

// CommandResult 命令结果消息的内容
type CommandResult struct {
	Command string `json:"command"`
	Result  string `json:"result"`
}

// CommandRunner 在连接上执行一条命令
type CommandRunner func(ctx context.Context, profileID, command string) (string, error)

// Handler 把 WebSocket 连接接入在线控制台
type Handler struct {
	Manager *Manager
	Run     CommandRunner
	// CanExecute 判断角色能否执行命令
	CanExecute func(role string) bool
}

// NewHandler 创建在线控制台处理器
func NewHandler(manager *Manager, run CommandRunner, canExecute func(role string) bool) *Handler {
	return &Handler{Manager: manager, Run: run, CanExecute: canExecute}
}

// ServeHTTP 处理WebSocket连接
func (h *Handler) ServeHTTP(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("升级WebSocket连接失败: %v", err)
		return
	}

	client := &Client{
		ID:        uuid.New().String(),
		Conn:      conn,
		Send:      make(chan []byte, 256),
		ProfileID: middleware.GetCurrentProfileID(c),
		Role:      middleware.GetCurrentRole(c),
		Manager:   h.Manager,
	}
	client.touch()

	h.Manager.Register(client)

	client.trySend(MarshalMessage(MessageTypeJoin, map[string]interface{}{
		"clientID": client.ID,
		"role":     client.Role,
	}))

	go client.writePump()
	go h.readPump(client)
}

// readPump 从WebSocket连接读取消息，命令按收到的顺序依次执行
func (h *Handler) readPump(c *Client) {
	defer func() {
		c.Manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(heartbeatTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.touch()
		c.Conn.SetReadDeadline(time.Now().Add(heartbeatTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("读取WebSocket消息错误: %v", err)
			}
			return
		}
		c.Conn.SetReadDeadline(time.Now().Add(heartbeatTimeout))
		h.handleMessage(c, message)
	}
}

// writePump 向WebSocket连接写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (h *Handler) handleMessage(c *Client, data []byte) {
	c.touch()

	var message Message
	if err := sonic.Unmarshal(data, &message); err != nil {
		c.trySend(MarshalMessage(MessageTypeError, "无效的消息格式"))
		return
	}

	switch message.Type {
	case MessageTypePing:
		c.trySend(MarshalMessage(MessageTypePong, nil))

	case MessageTypeCommand:
		command, _ := message.Content.(string)
		if h.CanExecute == nil || !h.CanExecute(c.Role) {
			c.trySend(MarshalMessage(MessageTypeError, "权限不足: 只读会话不能执行命令"))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		result, err := h.Run(ctx, c.ProfileID, command)
		cancel()
		if err != nil {
			c.trySend(MarshalMessage(MessageTypeError, err.Error()))
			return
		}
		c.trySend(MarshalMessage(MessageTypeResponse, CommandResult{Command: command, Result: result}))

	default:
		c.trySend(MarshalMessage(MessageTypeError, "不支持的消息类型"))
	}
}

// MarshalMessage 将消息编码为JSON
func MarshalMessage(msgType string, content interface{}) []byte {
	data, err := sonic.Marshal(Message{Type: msgType, Content: content})
	if err != nil {
		log.Printf("编码消息失败: %v", err)
		return []byte(`{"type":"error","content":"消息编码失败"}`)
	}
	return data
}
