// mccli 是一个命令行RCON客户端，每条命令使用独立连接。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"city.newnan/rcon-console/pkg/mccontrol"
)

const (
	defaultHost     = "localhost"
	defaultRconPort = 25575
	defaultGamePort = 25565
)

// CLI选项
type cliOptions struct {
	host     string
	rconPort int
	gamePort int
	password string
	timeout  time.Duration

	updateInterval time.Duration

	terminal    bool
	players     bool
	enableColor bool
	debug       bool

	commands []string
}

// CLI颜色设置
var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	promptColor  = color.New(color.FgCyan, color.Bold)
	opColor      = color.New(color.FgYellow, color.Bold)
)

func main() {
	options, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		errorColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if options.password == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			errorColor.Fprintln(os.Stderr, "错误: 必须提供 RCON 密码 (-p 或 MCRCON_PASS)")
			os.Exit(2)
		}
		fmt.Fprint(os.Stderr, "RCON 密码: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			errorColor.Fprintf(os.Stderr, "读取密码失败: %v\n", err)
			os.Exit(1)
		}
		options.password = string(pw)
	}

	color.NoColor = !options.enableColor

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	controller, err := createController(options)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "创建Minecraft控制器失败: %v\n", err)
		os.Exit(1)
	}

	cli := &client{controller: controller, options: options, out: os.Stdout, errOut: os.Stderr}

	exitCode := 0
	switch {
	case options.players:
		exitCode = cli.printPlayers(ctx)
	case options.terminal:
		exitCode = cli.runTerminal(ctx)
	default:
		exitCode = cli.runCommands(ctx, options.commands)
	}
	os.Exit(exitCode)
}

// parseOptions 解析命令行参数，环境变量提供默认值
func parseOptions(args []string, getenv func(string) string) (*cliOptions, error) {
	options := &cliOptions{}

	rconPort := defaultRconPort
	if v := getenv("MCRCON_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("无效的 MCRCON_PORT: %q", v)
		}
		rconPort = p
	}
	host := defaultHost
	if v := getenv("MCRCON_HOST"); v != "" {
		host = v
	}

	var disableColor bool
	fs := flag.NewFlagSet("mccli", flag.ContinueOnError)
	fs.StringVar(&options.host, "H", host, "服务器地址")
	fs.IntVar(&options.rconPort, "P", rconPort, "RCON 端口")
	fs.IntVar(&options.gamePort, "g", defaultGamePort, "游戏端口，用于 /status")
	fs.StringVar(&options.password, "p", getenv("MCRCON_PASS"), "RCON 密码")
	fs.DurationVar(&options.timeout, "timeout", mccontrol.DefaultTimeout, "连接与读取超时")
	fs.DurationVar(&options.updateInterval, "update-interval", 30*time.Second, "终端模式下检查服务器状态的间隔，0 表示不检查")
	fs.BoolVar(&options.terminal, "t", false, "交互终端模式")
	fs.BoolVar(&disableColor, "c", false, "禁用颜色")
	fs.BoolVar(&options.players, "players", false, "列出在线玩家、管理员与挂机状态")
	fs.BoolVar(&options.debug, "debug", false, "输出RCON数据包日志")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if options.rconPort <= 0 || options.rconPort > 65535 {
		return nil, fmt.Errorf("无效的 RCON 端口: %d", options.rconPort)
	}

	options.commands = fs.Args()
	if len(options.commands) == 0 && !options.players {
		options.terminal = true
	}
	options.enableColor = !disableColor && isatty.IsTerminal(os.Stdout.Fd())
	return options, nil
}

// createController 创建并配置Minecraft控制器
func createController(options *cliOptions) (*mccontrol.MinecraftController, error) {
	controllerOpts := []mccontrol.ControllerOption{}
	if options.debug {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		controllerOpts = append(controllerOpts, mccontrol.WithControllerLogger(logger))
	}

	return mccontrol.NewMinecraftController(mccontrol.ServerConfig{
		Host:     options.host,
		RconPort: options.rconPort,
		GamePort: options.gamePort,
		Password: options.password,
		Timeout:  options.timeout,
	}, controllerOpts...)
}

type client struct {
	controller *mccontrol.MinecraftController
	options    *cliOptions
	out        io.Writer
	errOut     io.Writer
}

// render 按终端能力输出颜色代码
func (c *client) render(text string) string {
	if c.options.enableColor {
		return mccontrol.ColorCodesToANSI(text)
	}
	return mccontrol.StripColorCodes(text)
}

// execute 执行一条命令并输出结果，失败时返回 false
func (c *client) execute(ctx context.Context, command string) bool {
	result, err := c.controller.ExecuteCommand(ctx, command)
	if err != nil {
		errorColor.Fprintln(c.errOut, mccontrol.Describe(err))
		return false
	}
	if result != "" {
		fmt.Fprintln(c.out, strings.TrimRight(c.render(result), "\n"))
	}
	return true
}

// runCommands 依次执行命令行给出的命令
func (c *client) runCommands(ctx context.Context, commands []string) int {
	for _, command := range commands {
		if ctx.Err() != nil {
			return 1
		}
		if !c.execute(ctx, command) {
			return 1
		}
	}
	return 0
}

// printPlayers 输出在线玩家
func (c *client) printPlayers(ctx context.Context) int {
	players, err := c.controller.GetPlayers(ctx)
	if err != nil {
		errorColor.Fprintln(c.errOut, mccontrol.Describe(err))
		return 1
	}
	fmt.Fprint(c.out, formatPlayers(players))
	return 0
}

// formatPlayers 每行一个玩家，管理员与挂机单独标记
func formatPlayers(players []mccontrol.PlayerRecord) string {
	if len(players) == 0 {
		return "没有在线玩家\n"
	}
	var sb strings.Builder
	for _, p := range players {
		name := mccontrol.StripColorCodes(p.Name)
		if p.IsOp {
			name = opColor.Sprint(name) + " [OP]"
		}
		if p.AFK {
			name += " [AFK]"
		}
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// runTerminal 交互终端，支持历史记录
func (c *client) runTerminal(ctx context.Context) int {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".mccli_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptColor.Sprint("> "),
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		errorColor.Fprintf(c.errOut, "初始化终端失败: %v\n", err)
		return 1
	}
	defer rl.Close()
	c.out = rl.Stdout()
	c.errOut = rl.Stderr()

	successColor.Fprintf(c.out, "已连接 %s:%d，输入 Q 或按 Ctrl-D 退出，/help 查看本地命令\n", c.options.host, c.options.rconPort)

	if c.options.updateInterval > 0 {
		c.watchStatus(ctx)
	}

	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return 0
			}
			continue
		}
		if err != nil {
			return 0
		}

		command := strings.TrimSpace(line)
		if command == "" {
			continue
		}
		if strings.EqualFold(command, "q") {
			return 0
		}
		if strings.HasPrefix(command, "/") {
			c.handleLocalCommand(ctx, command)
			continue
		}

		c.execute(ctx, command)

		// 服务器关闭后连接不再可用
		if strings.EqualFold(command, "stop") {
			return 0
		}
	}
	return 0
}

// watchStatus 服务器上线或离线时提示
func (c *client) watchStatus(ctx context.Context) {
	var known, last bool
	c.controller.StartStatusMonitoring(ctx, c.options.updateInterval, func(status *mccontrol.ServerStatus, err error) {
		if err != nil {
			return
		}
		if known && status.Online == last {
			return
		}
		known, last = true, status.Online
		if status.Online {
			successColor.Fprintf(c.out, "服务器在线: %s, 玩家: %d/%d\n", status.Version, status.Players, status.MaxPlayers)
		} else {
			errorColor.Fprintf(c.out, "服务器离线: %s\n", status.LastError)
		}
	})
}

// handleLocalCommand 处理本地CLI命令
func (c *client) handleLocalCommand(ctx context.Context, command string) {
	switch strings.ToLower(strings.TrimPrefix(command, "/")) {
	case "players":
		c.printPlayers(ctx)

	case "status":
		status, err := c.controller.CheckServerStatus(ctx)
		if err != nil {
			errorColor.Fprintf(c.errOut, "检查服务器状态失败: %v\n", err)
		} else if status.Online {
			successColor.Fprintf(c.out, "服务器在线! 版本: %s, 玩家: %d/%d, 延迟: %d ms\n",
				status.Version, status.Players, status.MaxPlayers, status.Latency)
			if status.Description != "" {
				fmt.Fprintln(c.out, c.render(status.Description))
			}
		} else {
			errorColor.Fprintf(c.out, "服务器离线: %s\n", status.LastError)
		}

	case "help":
		fmt.Fprintln(c.out, "可用的本地命令:")
		fmt.Fprintln(c.out, "  /players  - 在线玩家与管理员")
		fmt.Fprintln(c.out, "  /status   - 服务器状态")
		fmt.Fprintln(c.out, "  /help     - 显示此帮助信息")
		fmt.Fprintln(c.out, "  Q         - 退出")
		fmt.Fprintln(c.out, "所有其他输入将作为RCON命令发送到Minecraft服务器")

	default:
		errorColor.Fprintf(c.errOut, "未知的本地命令: %s\n", command)
	}
}
