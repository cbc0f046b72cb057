package mccontrol

import (
	"context"
	"time"
)

// CommandExecutor 命令执行器接口
type CommandExecutor interface {
	// ExecuteCommand 执行命令并返回结果
	ExecuteCommand(ctx context.Context, cmd string) (string, error)
}

// ServerConfig 描述一台Minecraft服务器的连接参数
type ServerConfig struct {
	Host     string        // 服务器地址
	RconPort int           // RCON端口
	GamePort int           // 游戏端口，用于状态查询，为0则不可查询状态
	Password string        // RCON密码
	Timeout  time.Duration // 连接与读取超时，为0则使用 DefaultTimeout
}

// MinecraftStatusData 相关结构体 - 用于解析Ping返回的JSON数据

// MCOnlinePlayer 表示在线玩家信息
type MCOnlinePlayer struct {
	ID   string `json:"id"`   // 玩家UUID
	Name string `json:"name"` // 玩家名称
}

// Version 表示服务器版本信息
type Version struct {
	Name     string `json:"name"`     // 版本名称
	Protocol int    `json:"protocol"` // 协议版本
}

// Players 表示玩家信息
type Players struct {
	Max    int              `json:"max"`    // 最大玩家数
	Online int              `json:"online"` // 在线玩家数
	Sample []MCOnlinePlayer `json:"sample"` // 在线玩家样本
}

// MinecraftStatus 表示Ping返回的服务器状态
type MinecraftStatus struct {
	Version     Version     `json:"version"`     // 版本信息
	Players     Players     `json:"players"`     // 玩家信息
	Description interface{} `json:"description"` // 服务器描述，可能是字符串或对象
}

// GetDescriptionText 从不同格式的描述字段中提取纯文本
func (m *MinecraftStatus) GetDescriptionText() string {
	switch desc := m.Description.(type) {
	case string:
		return desc
	case map[string]interface{}:
		text, _ := desc["text"].(string)
		if extra, ok := desc["extra"].([]interface{}); ok {
			for _, item := range extra {
				switch v := item.(type) {
				case string:
					text += v
				case map[string]interface{}:
					if extraText, ok := v["text"].(string); ok {
						text += extraText
					}
				}
			}
		}
		return text
	}
	return ""
}

// ServerStatus 包含Minecraft服务器状态信息
type ServerStatus struct {
	Online      bool      `json:"online"`       // 服务器是否在线
	LastChecked time.Time `json:"last_checked"` // 检查时间
	LastError   string    `json:"last_error"`   // 错误信息

	Players     int      `json:"players"`     // 当前在线玩家数量
	MaxPlayers  int      `json:"max_players"` // 最大玩家数量
	Sample      []string `json:"sample"`      // 在线玩家样本
	Version     string   `json:"version"`     // 服务器版本
	Description string   `json:"description"` // 服务器描述
	Latency     int      `json:"latency"`     // 延迟，单位：毫秒
}
