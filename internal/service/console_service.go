package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"gorm.io/gorm"

	"city.newnan/rcon-console/pkg/mccontrol"
)

// TestPlayerName ?test=1 时追加的虚拟玩家
const TestPlayerName = "TestPlayer"

// ConsoleService 在已登录的连接上执行命令、查询玩家和服务器状态
type ConsoleService struct {
	DB         *gorm.DB
	Profiles   *ProfileService
	Locks      *ProfileLocks
	Logger     *slog.Logger
	publishers []EntryPublisher
	// 追加到每个控制器的选项，测试中用于替换执行器
	ControllerOptions []mccontrol.ControllerOption
}

// NewConsoleService 创建控制台服务实例
func NewConsoleService(gormDB *gorm.DB, profiles *ProfileService, locks *ProfileLocks, logger *slog.Logger, publishers ...EntryPublisher) *ConsoleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleService{
		DB:         gormDB,
		Profiles:   profiles,
		Locks:      locks,
		Logger:     logger,
		publishers: publishers,
	}
}

// controller 为连接创建控制器，控制台记录写入数据库
func (s *ConsoleService) controller(profileID string) (*mccontrol.MinecraftController, error) {
	profile, err := s.Profiles.GetProfile(profileID)
	if err != nil {
		return nil, err
	}
	serverConfig, err := s.Profiles.ServerConfig(profile)
	if err != nil {
		return nil, err
	}

	logger := s.Logger.With(slog.String("profile", profileID))
	opts := []mccontrol.ControllerOption{
		mccontrol.WithTranscript(&transcriptStore{db: s.DB, profileID: profileID, publishers: s.publishers}),
		mccontrol.WithControllerLogger(logger),
	}
	opts = append(opts, s.ControllerOptions...)
	return mccontrol.NewMinecraftController(serverConfig, opts...)
}

// Command 执行命令并记录，RCON失败时返回错误描述作为结果
func (s *ConsoleService) Command(ctx context.Context, profileID, command string) (string, error) {
	mc, err := s.controller(profileID)
	if err != nil {
		return "", err
	}

	unlock, err := s.Locks.Lock(ctx, profileID)
	if err != nil {
		return "", err
	}
	defer unlock()

	result, err := mc.ExecuteCommand(ctx, command)
	if err != nil {
		log.Printf("执行命令失败: profile=%s, error=%v", profileID, err)
		return mccontrol.Describe(err), nil
	}
	return result, nil
}

// Players 查询在线玩家，test 为 true 时追加一个虚拟玩家
func (s *ConsoleService) Players(ctx context.Context, profileID string, test bool) ([]mccontrol.PlayerRecord, error) {
	mc, err := s.controller(profileID)
	if err != nil {
		return nil, err
	}

	players, err := mc.GetPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if test {
		players = append(players, mccontrol.PlayerRecord{Name: TestPlayerName})
	}
	return players, nil
}

// ConsoleLog 返回连接的控制台记录
func (s *ConsoleService) ConsoleLog(profileID string) ([]string, error) {
	if _, err := s.Profiles.GetProfile(profileID); err != nil {
		return nil, err
	}
	entries, err := loadTranscript(s.DB, profileID)
	if err != nil {
		return nil, fmt.Errorf("读取控制台记录失败: %w", err)
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines, nil
}

// Status 查询服务器状态
func (s *ConsoleService) Status(ctx context.Context, profileID string) (*mccontrol.ServerStatus, error) {
	mc, err := s.controller(profileID)
	if err != nil {
		return nil, err
	}
	return mc.CheckServerStatus(ctx)
}

// Logout 退出登录并释放连接的锁
func (s *ConsoleService) Logout(profileID string) error {
	if err := s.Profiles.Logout(profileID); err != nil {
		return err
	}
	s.Locks.Forget(profileID)
	return nil
}

