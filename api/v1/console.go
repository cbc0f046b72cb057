package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/service"
)

// ConsoleController 控制台相关API控制器
type ConsoleController struct {
	Console *service.ConsoleService
}

// NewConsoleController 创建控制台控制器
func NewConsoleController(console *service.ConsoleService) *ConsoleController {
	return &ConsoleController{Console: console}
}

// Command 执行命令
// @Summary 执行命令
// @Description 通过RCON执行一条命令，失败时 result 为错误描述
// @Tags 控制台
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param command body model.CommandRequest true "命令"
// @Success 200 {object} model.Response{data=model.CommandResponse} "执行完成"
// @Failure 400 {object} model.Response "请求参数错误"
// @Failure 401 {object} model.Response "未登录"
// @Failure 403 {object} model.Response "只读会话"
// @Router /api/v1/console/command [post]
func (c *ConsoleController) Command(ctx *gin.Context) {
	var req model.CommandRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, model.ErrorResponse(http.StatusBadRequest, "无效的请求参数: "+err.Error()))
		return
	}

	// 命令原样发送，空命令也会发送并记入日志
	result, err := c.Console.Command(ctx.Request.Context(), middleware.GetCurrentProfileID(ctx), req.Cmd)
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "执行命令失败: ", err)
		return
	}
	ctx.JSON(http.StatusOK, model.SuccessResponse(model.CommandResponse{Result: result}))
}

// Players 在线玩家
// @Summary 在线玩家
// @Description 执行 list 与 ops 并返回玩家、管理员与挂机标记
// @Tags 控制台
// @Produce json
// @Security ApiKeyAuth
// @Param test query bool false "追加一个测试玩家"
// @Success 200 {object} model.Response{data=model.PlayersResponse} "获取成功"
// @Failure 401 {object} model.Response "未登录"
// @Failure 502 {object} model.Response "查询服务器失败"
// @Router /api/v1/console/players [get]
func (c *ConsoleController) Players(ctx *gin.Context) {
	test, _ := strconv.ParseBool(ctx.DefaultQuery("test", "false"))

	players, err := c.Console.Players(ctx.Request.Context(), middleware.GetCurrentProfileID(ctx), test)
	if err != nil {
		respondError(ctx, http.StatusBadGateway, "获取玩家失败: ", err)
		return
	}
	ctx.JSON(http.StatusOK, model.SuccessResponse(model.PlayersResponse{Players: players}))
}

// Log 控制台记录
// @Summary 控制台记录
// @Description 按执行顺序返回当前连接的控制台记录
// @Tags 控制台
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Response{data=model.ConsoleLogResponse} "获取成功"
// @Failure 401 {object} model.Response "未登录"
// @Router /api/v1/console/log [get]
func (c *ConsoleController) Log(ctx *gin.Context) {
	lines, err := c.Console.ConsoleLog(middleware.GetCurrentProfileID(ctx))
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "获取控制台记录失败: ", err)
		return
	}
	ctx.JSON(http.StatusOK, model.SuccessResponse(model.ConsoleLogResponse{Console: lines}))
}

// Status 服务器状态
// @Summary 服务器状态
// @Description 通过游戏端口Ping服务器
// @Tags 控制台
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Response{data=mccontrol.ServerStatus} "获取成功"
// @Failure 401 {object} model.Response "未登录"
// @Router /api/v1/console/status [get]
func (c *ConsoleController) Status(ctx *gin.Context) {
	status, err := c.Console.Status(ctx.Request.Context(), middleware.GetCurrentProfileID(ctx))
	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "获取服务器状态失败: ", err)
		return
	}
	ctx.JSON(http.StatusOK, model.SuccessResponse(status))
}
