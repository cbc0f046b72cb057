package mccontrol

import (
	"context"
)

// Execute 为一条命令打开独立连接，完成认证、执行和关闭，返回结构化结果。
// 不做任何重试：命令最多送达一次。
func Execute(ctx context.Context, host string, port int, password, command string, opts ...Option) (string, error) {
	session, err := Dial(ctx, host, port, opts...)
	if err != nil {
		return "", err
	}
	defer session.Close()

	if err := session.Authenticate(ctx, password); err != nil {
		return "", err
	}

	return session.Execute(ctx, command)
}

// Query 与 Execute 相同，但把所有错误折叠成一段可直接展示的文本。
// 成功时返回服务器回应（可能为空字符串）。
func Query(ctx context.Context, host string, port int, password, command string, opts ...Option) string {
	result, err := Execute(ctx, host, port, password, command, opts...)
	if err != nil {
		return Describe(err)
	}
	return result
}
