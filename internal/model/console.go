package model

import (
	"time"

	"city.newnan/rcon-console/pkg/mccontrol"
)

// 控制台角色
const (
	RoleOperator = "operator" // 可执行命令
	RoleViewer   = "viewer"   // 只读
)

// ServerProfile 一次登录保存的服务器地址与凭据
type ServerProfile struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Host           string    `gorm:"size:255;not null" json:"host"`
	RconPort       int       `gorm:"not null" json:"rcon_port"`
	GamePort       int       `json:"game_port"`
	PasswordCipher string    `gorm:"size:512;not null" json:"-"`
	Role           string    `gorm:"size:20;not null" json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConsoleEntry 控制台记录中的一行，按自增ID保持顺序
type ConsoleEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"size:36;index;not null" json:"-"`
	Direction string    `gorm:"size:1;not null" json:"direction"`
	Text      string    `gorm:"type:text" json:"text"`
	CreatedAt time.Time `json:"time"`
}

// ToTranscriptEntry 转换为 mccontrol.TranscriptEntry
func (e ConsoleEntry) ToTranscriptEntry() mccontrol.TranscriptEntry {
	return mccontrol.TranscriptEntry{
		Time:      e.CreatedAt,
		Direction: mccontrol.Direction(e.Direction),
		Text:      e.Text,
	}
}

// Line 格式化为控制台行
func (e ConsoleEntry) Line() string {
	return e.ToTranscriptEntry().Line()
}

// LoginRequest 登录请求
type LoginRequest struct {
	Host     string `json:"host" form:"host" binding:"required"`
	Port     int    `json:"port" form:"port" binding:"omitempty,min=1,max=65535"`
	GamePort int    `json:"game_port" form:"game_port" binding:"omitempty,min=1,max=65535"`
	Password string `json:"password" form:"password" binding:"required"`
	ReadOnly bool   `json:"read_only" form:"read_only"`
}

// CommandRequest 命令请求
type CommandRequest struct {
	Cmd string `json:"cmd" form:"cmd"`
}

// CommandResponse 命令结果，失败时为错误描述
type CommandResponse struct {
	Result string `json:"result"`
}

// PlayersResponse 在线玩家列表
type PlayersResponse struct {
	Players []mccontrol.PlayerRecord `json:"players"`
}

// ConsoleLogResponse 控制台记录
type ConsoleLogResponse struct {
	Console []string `json:"console"`
}

// ProfileResponse 登录信息（不包含密码）
type ProfileResponse struct {
	Profile ServerProfile `json:"profile"`
	Token   string        `json:"token"`
}
