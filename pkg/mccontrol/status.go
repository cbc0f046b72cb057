package mccontrol

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/xrjr/mcutils/pkg/ping"
)

// pingFunc 执行一次服务器列表Ping，返回原始属性与延迟（毫秒）
type pingFunc func(host string, port int) (map[string]interface{}, int, error)

func defaultPing(host string, port int) (map[string]interface{}, int, error) {
	properties, latency, err := ping.Ping(host, port)
	if err != nil {
		return nil, 0, err
	}
	return properties, int(latency), nil
}

type pingResult struct {
	properties map[string]interface{}
	latency    int
	err        error
}

// CheckServerStatus 通过游戏端口Ping服务器并返回状态。
// 服务器离线不算错误，返回 Online=false 并附带原因。
func (m *MinecraftController) CheckServerStatus(ctx context.Context) (*ServerStatus, error) {
	if m.config.GamePort <= 0 {
		return nil, fmt.Errorf("游戏端口未设置")
	}

	status := &ServerStatus{LastChecked: m.now()}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	ch := make(chan pingResult, 1)
	go func() {
		properties, latency, err := m.pinger(m.config.Host, m.config.GamePort)
		ch <- pingResult{properties, latency, err}
	}()

	var res pingResult
	select {
	case <-ctx.Done():
		status.LastError = fmt.Sprintf("Ping服务器超时: %v", ctx.Err())
		return status, nil
	case res = <-ch:
	}

	if res.err != nil {
		status.LastError = fmt.Sprintf("Ping服务器失败: %v", res.err)
		return status, nil
	}

	status.Online = true
	status.Latency = res.latency

	// 使用 sonic 将属性转换为结构体
	jsonData, err := sonic.Marshal(res.properties)
	if err != nil {
		status.LastError = fmt.Sprintf("序列化服务器属性失败: %v", err)
		return status, fmt.Errorf("序列化服务器属性失败: %w", err)
	}

	var mcStatus MinecraftStatus
	if err := sonic.Unmarshal(jsonData, &mcStatus); err != nil {
		status.LastError = fmt.Sprintf("解析服务器状态失败: %v", err)
		return status, fmt.Errorf("解析服务器状态失败: %w", err)
	}

	status.Version = mcStatus.Version.Name
	status.Players = mcStatus.Players.Online
	status.MaxPlayers = mcStatus.Players.Max
	status.Description = mcStatus.GetDescriptionText()
	for _, p := range mcStatus.Players.Sample {
		status.Sample = append(status.Sample, p.Name)
	}

	return status, nil
}

// StartStatusMonitoring 定期检查服务器状态并回调，ctx 结束时停止
func (m *MinecraftController) StartStatusMonitoring(ctx context.Context, interval time.Duration, onStatus func(*ServerStatus, error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				onStatus(m.CheckServerStatus(ctx))
			}
		}
	}()
}
