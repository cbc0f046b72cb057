package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/model"
)

// TokenCookie 保存控制台Token的Cookie名
const TokenCookie = "token"

const (
	ctxProfileID = "profile_id"
	ctxRole      = "role"
)

// ConsoleClaims 控制台Token载荷，一个Token对应一个已保存的服务器连接
type ConsoleClaims struct {
	jwt.RegisteredClaims
	ProfileID string `json:"profile_id"`
	Role      string `json:"role"`
}

// GenerateToken 为服务器连接签发Token
func GenerateToken(profile model.ServerProfile, cfg *config.Config) (string, error) {
	now := time.Now()
	claims := ConsoleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTExpireTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.JWTIssuer,
			Subject:   profile.Host,
		},
		ProfileID: profile.ID,
		Role:      profile.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken 解析并校验Token
func ParseToken(tokenString string, cfg *config.Config) (*ConsoleClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ConsoleClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*ConsoleClaims); ok && token.Valid && claims.ProfileID != "" {
		return claims, nil
	}
	return nil, errors.New("无效的Token")
}

// tokenFromRequest 依次从 Authorization 头、Cookie、query 中取Token
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	// 浏览器的 WebSocket/EventSource 无法设置请求头
	return c.Query("token")
}

// JWTAuth 认证中间件，未登录时返回 "Not logged in."
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse(http.StatusUnauthorized, model.MsgNotLoggedIn))
			return
		}

		claims, err := ParseToken(tokenString, cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse(http.StatusUnauthorized, model.MsgNotLoggedIn))
			return
		}

		c.Set(ctxProfileID, claims.ProfileID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// GetCurrentProfileID 当前请求对应的服务器连接ID
func GetCurrentProfileID(c *gin.Context) string {
	return c.GetString(ctxProfileID)
}

// GetCurrentRole 当前请求的角色
func GetCurrentRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}

// SetTokenCookie 写入Token Cookie
func SetTokenCookie(c *gin.Context, token string, cfg *config.Config) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(cfg.JWTExpireTime.Seconds()), "/", "", cfg.JWTCookieSecure, cfg.JWTCookieHTTPOnly)
}

// ClearTokenCookie 清除Token Cookie
func ClearTokenCookie(c *gin.Context, cfg *config.Config) {
	c.SetCookie(TokenCookie, "", -1, "/", "", cfg.JWTCookieSecure, cfg.JWTCookieHTTPOnly)
}
