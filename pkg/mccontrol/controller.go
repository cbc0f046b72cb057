package mccontrol

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// MinecraftController 组合RCON核心与玩家解析，供上层界面使用。
// 控制器本身不保存可变状态，可并发使用；每条命令使用独立连接。
type MinecraftController struct {
	config     ServerConfig
	executor   CommandExecutor
	transcript TranscriptSink
	pinger     pingFunc
	now        func() time.Time
	logger     *slog.Logger
	rconOpts   []Option
}

// ControllerOption 配置控制器
type ControllerOption func(*MinecraftController)

// WithExecutor 替换命令执行器
func WithExecutor(e CommandExecutor) ControllerOption {
	return func(m *MinecraftController) {
		m.executor = e
	}
}

// WithTranscript 注入控制台记录，ExecuteCommand 会把命令与结果追加进去
func WithTranscript(sink TranscriptSink) ControllerOption {
	return func(m *MinecraftController) {
		m.transcript = sink
	}
}

// WithClock 替换记录时间来源
func WithClock(now func() time.Time) ControllerOption {
	return func(m *MinecraftController) {
		if now != nil {
			m.now = now
		}
	}
}

// WithControllerLogger 设置控制器与RCON核心使用的日志记录器
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(m *MinecraftController) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRconOptions 追加传给RCON核心的选项
func WithRconOptions(opts ...Option) ControllerOption {
	return func(m *MinecraftController) {
		m.rconOpts = append(m.rconOpts, opts...)
	}
}

// NewMinecraftController 创建一个新的Minecraft控制器实例
func NewMinecraftController(config ServerConfig, opts ...ControllerOption) (*MinecraftController, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("服务器地址未设置")
	}
	if config.RconPort <= 0 || config.RconPort > 65535 {
		return nil, fmt.Errorf("无效的RCON端口: %d", config.RconPort)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	m := &MinecraftController{
		config: config,
		pinger: defaultPing,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.executor == nil {
		rconOpts := append([]Option{WithTimeout(config.Timeout), WithLogger(m.logger)}, m.rconOpts...)
		m.executor = NewRconExecutor(config.Host, config.RconPort, config.Password, rconOpts...)
	}

	return m, nil
}

// Config 返回控制器的服务器配置
func (m *MinecraftController) Config() ServerConfig {
	return m.config
}

// ExecuteCommand 执行一条命令。
// 配置了控制台记录时，命令与结果（失败时为错误描述）按顺序追加。
func (m *MinecraftController) ExecuteCommand(ctx context.Context, command string) (string, error) {
	sentAt := m.now()
	result, err := m.executor.ExecuteCommand(ctx, command)

	if m.transcript != nil {
		text := result
		if err != nil {
			text = Describe(err)
		}
		appendErr := m.transcript.Append(
			TranscriptEntry{Time: sentAt, Direction: DirectionSent, Text: command},
			TranscriptEntry{Time: m.now(), Direction: DirectionReceived, Text: text},
		)
		if appendErr != nil {
			m.logger.Warn("追加控制台记录失败", slog.String("error", appendErr.Error()))
		}
	}

	if err != nil {
		return "", err
	}
	return result, nil
}

// GetPlayers 依次执行 list 和 ops，解析并计算管理员标记。
// ops 失败时按空列表处理，使用颜色规则判断管理员。
func (m *MinecraftController) GetPlayers(ctx context.Context) ([]PlayerRecord, error) {
	listText, err := m.executor.ExecuteCommand(ctx, "list")
	if err != nil {
		return nil, fmt.Errorf("获取玩家列表失败: %w", err)
	}
	players := ParsePlayerList(listText)

	opsText, err := m.executor.ExecuteCommand(ctx, "ops")
	if err != nil {
		m.logger.Warn("获取管理员列表失败，改用颜色判断", slog.String("error", err.Error()))
		opsText = ""
	}

	return ResolveOperators(players, ParseOpsList(opsText)), nil
}
