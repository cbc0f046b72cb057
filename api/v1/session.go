package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/service"
)

// SessionController 登录与退出
type SessionController struct {
	Profiles *service.ProfileService
	Console  *service.ConsoleService
	Config   *config.Config
}

// NewSessionController 创建登录控制器
func NewSessionController(profiles *service.ProfileService, console *service.ConsoleService, cfg *config.Config) *SessionController {
	return &SessionController{
		Profiles: profiles,
		Console:  console,
		Config:   cfg,
	}
}

// Login 保存服务器连接
// @Summary 登录服务器
// @Description 保存RCON地址与密码并签发Token，不会立即连接服务器
// @Tags 会话
// @Accept json
// @Produce json
// @Param login body model.LoginRequest true "服务器连接信息"
// @Success 200 {object} model.Response{data=model.ProfileResponse} "登录成功"
// @Failure 400 {object} model.Response "请求参数错误"
// @Failure 500 {object} model.Response "服务器内部错误"
// @Router /api/v1/session/login [post]
func (c *SessionController) Login(ctx *gin.Context) {
	var req model.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.ErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
		return
	}

	profile, token, err := c.Profiles.Login(req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, model.ErrorResponse(http.StatusInternalServerError, "登录失败: "+err.Error()))
		return
	}

	middleware.SetTokenCookie(ctx, token, c.Config)
	ctx.JSON(http.StatusOK, model.SuccessResponse(model.ProfileResponse{
		Profile: *profile,
		Token:   token,
	}))
}

// Logout 退出登录
// @Summary 退出登录
// @Description 删除保存的连接与控制台记录
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Response "退出成功"
// @Failure 401 {object} model.Response "未登录"
// @Failure 500 {object} model.Response "服务器内部错误"
// @Router /api/v1/session/logout [post]
func (c *SessionController) Logout(ctx *gin.Context) {
	if err := c.Console.Logout(middleware.GetCurrentProfileID(ctx)); err != nil {
		ctx.JSON(http.StatusInternalServerError, model.ErrorResponse(http.StatusInternalServerError, "退出失败: "+err.Error()))
		return
	}

	middleware.ClearTokenCookie(ctx, c.Config)
	ctx.JSON(http.StatusOK, model.SuccessResponse(nil))
}

// respondError 连接已被删除时按未登录处理
func respondError(ctx *gin.Context, status int, prefix string, err error) {
	if errors.Is(err, service.ErrProfileNotFound) {
		ctx.JSON(http.StatusUnauthorized, model.ErrorResponse(http.StatusUnauthorized, model.MsgNotLoggedIn))
		return
	}
	ctx.JSON(status, model.ErrorResponse(status, prefix+err.Error()))
}
