package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	v1 "city.newnan/rcon-console/api/v1"
	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/service"
	"city.newnan/rcon-console/internal/sse"
	"city.newnan/rcon-console/internal/websocket"
)

// Dependencies 路由使用的服务
type Dependencies struct {
	Profiles *service.ProfileService
	Console  *service.ConsoleService
	Broker   *sse.Broker
	Manager  *websocket.Manager
}

// canExecute WebSocket命令与HTTP命令使用同一条授权规则
func canExecute(role string) bool {
	ok, err := middleware.Allowed(role, "/api/v1/console/command", http.MethodPost)
	return err == nil && ok
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "欢迎使用 RCON Console API",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	sessionController := v1.NewSessionController(deps.Profiles, deps.Console, cfg)
	consoleController := v1.NewConsoleController(deps.Console)
	consoleSocket := websocket.NewHandler(deps.Manager, deps.Console.Command, canExecute)
	realtimeController := v1.NewRealtimeController(deps.Broker, deps.Manager, consoleSocket)

	api := r.Group("/api/v1")
	{
		api.POST("/session/login", sessionController.Login)

		auth := api.Group("")
		auth.Use(middleware.JWTAuth(cfg))
		{
			auth.GET("/realtime/stats", realtimeController.GetRealtimeStats)

			authorized := auth.Group("")
			authorized.Use(middleware.Authorize())
			{
				authorized.POST("/session/logout", sessionController.Logout)

				authorized.POST("/console/command", consoleController.Command)
				authorized.GET("/console/players", consoleController.Players)
				authorized.GET("/console/log", consoleController.Log)
				authorized.GET("/console/status", consoleController.Status)

				authorized.GET("/ws", realtimeController.HandleWebSocket)
				authorized.GET("/sse", realtimeController.HandleSSE)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, model.ErrorResponse(http.StatusNotFound, model.MsgUnknownAction))
	})

	return r
}
