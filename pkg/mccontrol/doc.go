/*
Package mccontrol 实现Source RCON协议客户端，以及把服务器文本回应解析为结构化玩家记录的工具。

主要特性:

  - 数据包编解码：小端长度前缀的RCON线上格式
  - 单命令会话：每条命令独立完成 连接 -> 认证 -> 执行 -> 关闭，不重试、不复用连接
  - 错误分类：连接失败、协议错误、认证失败、超时可通过 errors.Is 区分
  - 文本解析：list / ops 回应解析与管理员判断，解析函数从不返回错误
  - 服务器状态：通过游戏端口的服务器列表Ping获取版本与在线人数

服务器状态查询依赖 github.com/xrjr/mcutils。

基本用法:

	// 兼容文本接口，所有错误折叠为一行描述
	result := mccontrol.Query(ctx, "127.0.0.1", 25575, "password", "list")

	// 结构化接口
	result, err := mccontrol.Execute(ctx, "127.0.0.1", 25575, "password", "list")
	if errors.Is(err, mccontrol.ErrAuthentication) {
		// 密码错误
	}

	// 控制器
	controller, err := mccontrol.NewMinecraftController(mccontrol.ServerConfig{
		Host:     "127.0.0.1",
		RconPort: 25575,
		GamePort: 25565,
		Password: "password",
	}, mccontrol.WithTranscript(&mccontrol.Transcript{}))
	if err != nil {
		// 处理错误
	}

	players, err := controller.GetPlayers(ctx)
	status, err := controller.CheckServerStatus(ctx)
*/
package mccontrol
