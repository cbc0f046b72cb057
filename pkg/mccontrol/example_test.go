package mccontrol_test

import (
	"context"
	"errors"
	"fmt"

	"city.newnan/rcon-console/pkg/mccontrol"
)

func ExampleQuery() {
	// 所有错误都会折叠为一行文本，适合直接展示
	result := mccontrol.Query(context.Background(), "127.0.0.1", 25575, "minecraft-password", "list")
	fmt.Println(result)
}

func ExampleExecute() {
	result, err := mccontrol.Execute(context.Background(), "127.0.0.1", 25575, "minecraft-password", "save-all")
	switch {
	case errors.Is(err, mccontrol.ErrAuthentication):
		fmt.Println("密码错误")
	case errors.Is(err, mccontrol.ErrTimeout):
		fmt.Println("服务器无响应")
	case err != nil:
		fmt.Println(mccontrol.Describe(err))
	default:
		fmt.Println(result)
	}
}

func ExampleParsePlayerList() {
	players := mccontrol.ParsePlayerList("There are 2/20 players online: Alice, Bob [AFK]")
	ops := mccontrol.ParseOpsList("There are 1 ops: alice")

	for _, p := range mccontrol.ResolveOperators(players, ops) {
		fmt.Printf("%s op=%v afk=%v\n", p.Name, p.IsOp, p.AFK)
	}
	// Output:
	// Alice op=true afk=false
	// Bob op=false afk=true
}

func ExampleMinecraftController() {
	transcript := &mccontrol.Transcript{}

	controller, err := mccontrol.NewMinecraftController(mccontrol.ServerConfig{
		Host:     "127.0.0.1",
		RconPort: 25575,
		GamePort: 25565,
		Password: "minecraft-password",
	}, mccontrol.WithTranscript(transcript))
	if err != nil {
		fmt.Printf("创建控制器失败: %v\n", err)
		return
	}

	ctx := context.Background()

	// 获取服务器状态
	status, err := controller.CheckServerStatus(ctx)
	if err != nil {
		fmt.Printf("检查服务器状态失败: %v\n", err)
	} else if status.Online {
		fmt.Printf("服务器在线! 版本: %s, 玩家: %d/%d\n",
			status.Version, status.Players, status.MaxPlayers)
	} else {
		fmt.Printf("服务器离线: %s\n", status.LastError)
	}

	if _, err := controller.ExecuteCommand(ctx, "say 服务器将在5分钟后重启"); err != nil {
		fmt.Println(mccontrol.Describe(err))
	}

	for _, line := range transcript.Lines() {
		fmt.Println(line)
	}
}
