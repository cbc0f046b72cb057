package mccontrol

import (
	"context"
	"fmt"
)

// rconExecutor 使用RCON协议的命令执行器，每条命令使用一条新连接
type rconExecutor struct {
	host     string
	port     int
	password string
	opts     []Option
}

// NewRconExecutor 创建RCON命令执行器
func NewRconExecutor(host string, port int, password string, opts ...Option) CommandExecutor {
	return &rconExecutor{
		host:     host,
		port:     port,
		password: password,
		opts:     opts,
	}
}

// ExecuteCommand 连接、认证、执行并关闭
func (e *rconExecutor) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if e.port <= 0 {
		return "", fmt.Errorf("RCON端口未设置")
	}
	return Execute(ctx, e.host, e.port, e.password, cmd, e.opts...)
}

// ExecutorFunc 把普通函数适配为 CommandExecutor
type ExecutorFunc func(ctx context.Context, cmd string) (string, error)

// ExecuteCommand 调用 f
func (f ExecutorFunc) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	return f(ctx, cmd)
}
