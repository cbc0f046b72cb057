package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/secret"
	"city.newnan/rcon-console/pkg/mccontrol"
)

// ErrProfileNotFound 连接不存在或已退出登录
var ErrProfileNotFound = errors.New("连接不存在")

// ProfileService 保存登录时填写的服务器地址与凭据
type ProfileService struct {
	DB     *gorm.DB
	Cipher *secret.Cipher
	Config *config.Config
}

// NewProfileService 创建连接服务实例
func NewProfileService(gormDB *gorm.DB, cipher *secret.Cipher, cfg *config.Config) *ProfileService {
	return &ProfileService{
		DB:     gormDB,
		Cipher: cipher,
		Config: cfg,
	}
}

// Login 保存连接并签发Token。不会连接服务器，凭据错误在第一次执行命令时才会暴露。
func (s *ProfileService) Login(req model.LoginRequest) (*model.ServerProfile, string, error) {
	host := strings.TrimSpace(req.Host)
	if host == "" {
		return nil, "", errors.New("服务器地址不能为空")
	}

	port := req.Port
	if port == 0 {
		port = s.Config.RconDefaultPort
	}
	gamePort := req.GamePort
	if gamePort == 0 {
		gamePort = s.Config.GameDefaultPort
	}

	cipherText, err := s.Cipher.Seal(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("加密密码失败: %w", err)
	}

	role := model.RoleOperator
	if req.ReadOnly {
		role = model.RoleViewer
	}

	profile := model.ServerProfile{
		ID:             uuid.New().String(),
		Host:           host,
		RconPort:       port,
		GamePort:       gamePort,
		PasswordCipher: cipherText,
		Role:           role,
	}
	if err := s.DB.Create(&profile).Error; err != nil {
		return nil, "", fmt.Errorf("保存连接失败: %w", err)
	}

	token, err := middleware.GenerateToken(profile, s.Config)
	if err != nil {
		return nil, "", fmt.Errorf("生成Token失败: %w", err)
	}
	return &profile, token, nil
}

// GetProfile 根据ID获取连接
func (s *ProfileService) GetProfile(id string) (*model.ServerProfile, error) {
	var profile model.ServerProfile
	if err := s.DB.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// ServerConfig 解密密码并生成 mccontrol 使用的配置
func (s *ProfileService) ServerConfig(profile *model.ServerProfile) (mccontrol.ServerConfig, error) {
	password, err := s.Cipher.Open(profile.PasswordCipher)
	if err != nil {
		return mccontrol.ServerConfig{}, fmt.Errorf("解密密码失败: %w", err)
	}
	return mccontrol.ServerConfig{
		Host:     profile.Host,
		RconPort: profile.RconPort,
		GamePort: profile.GamePort,
		Password: password,
		Timeout:  s.Config.RconTimeout,
	}, nil
}

// Logout 删除连接及其控制台记录，重复调用不报错
func (s *ProfileService) Logout(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&model.ConsoleEntry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ServerProfile{}).Error
	})
}
