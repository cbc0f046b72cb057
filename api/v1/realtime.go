package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/sse"
	"city.newnan/rcon-console/internal/websocket"
)

// RealtimeController 实时通信相关API控制器
type RealtimeController struct {
	Broker  *sse.Broker
	Manager *websocket.Manager
	Console *websocket.Handler
}

// NewRealtimeController 创建实时通信控制器
func NewRealtimeController(broker *sse.Broker, manager *websocket.Manager, console *websocket.Handler) *RealtimeController {
	return &RealtimeController{
		Broker:  broker,
		Manager: manager,
		Console: console,
	}
}

// HandleWebSocket 在线控制台
// @Summary WebSocket在线控制台
// @Description 发送 {"type":"command","content":"list"} 执行命令，同一连接的控制台更新以 event 推送
// @Tags 实时通信
// @Security ApiKeyAuth
// @Success 101 {string} string "切换为WebSocket协议"
// @Failure 401 {object} model.Response "未登录"
// @Router /api/v1/ws [get]
func (c *RealtimeController) HandleWebSocket(ctx *gin.Context) {
	c.Console.ServeHTTP(ctx)
}

// HandleSSE 控制台记录推送
// @Summary SSE控制台推送
// @Description 推送当前连接新追加的控制台记录
// @Tags 实时通信
// @Security ApiKeyAuth
// @Success 200 {string} string "SSE数据流"
// @Failure 401 {object} model.Response "未登录"
// @Router /api/v1/sse [get]
func (c *RealtimeController) HandleSSE(ctx *gin.Context) {
	c.Broker.ServeHTTP(ctx)
}

// GetRealtimeStats 获取实时连接统计
// @Summary 获取实时连接统计
// @Description 当前连接与全部连接的 WebSocket / SSE 客户端数量
// @Tags 实时通信
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} model.Response "获取成功"
// @Failure 401 {object} model.Response "未登录"
// @Router /api/v1/realtime/stats [get]
func (c *RealtimeController) GetRealtimeStats(ctx *gin.Context) {
	profileID := middleware.GetCurrentProfileID(ctx)

	ctx.JSON(http.StatusOK, model.SuccessResponse(map[string]interface{}{
		"websocket_total":   c.Manager.GetClientCount(),
		"websocket_profile": len(c.Manager.GetRoomClients(profileID)),
		"sse_total":         c.Broker.GetClientCount(),
		"sse_profile":       c.Broker.GetTopicClientCount(profileID),
		"timestamp":         time.Now().Format(time.RFC3339),
	}))
}
