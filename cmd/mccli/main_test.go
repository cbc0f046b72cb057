package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city.newnan/rcon-console/pkg/mccontrol"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseOptionsDefaults(t *testing.T) {
	opts, err := parseOptions([]string{"-p", "pw"}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "localhost", opts.host)
	assert.Equal(t, 25575, opts.rconPort)
	assert.Equal(t, "pw", opts.password)
	assert.Equal(t, mccontrol.DefaultTimeout, opts.timeout)
	assert.True(t, opts.terminal, "no commands starts terminal mode")
	assert.False(t, opts.enableColor)
}

func TestParseOptionsEnvAndCommands(t *testing.T) {
	opts, err := parseOptions(
		[]string{"-P", "30000", "-timeout", "5s", "list", "say hi"},
		env(map[string]string{"MCRCON_HOST": "mc.example.com", "MCRCON_PORT": "26000", "MCRCON_PASS": "secret"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "mc.example.com", opts.host)
	assert.Equal(t, 30000, opts.rconPort)
	assert.Equal(t, "secret", opts.password)
	assert.Equal(t, 5*time.Second, opts.timeout)
	assert.False(t, opts.terminal)
	assert.Equal(t, []string{"list", "say hi"}, opts.commands)
}

func TestParseOptionsPlayers(t *testing.T) {
	opts, err := parseOptions([]string{"-players"}, env(nil))
	require.NoError(t, err)
	assert.True(t, opts.players)
	assert.False(t, opts.terminal)
}

func TestParseOptionsErrors(t *testing.T) {
	_, err := parseOptions(nil, env(map[string]string{"MCRCON_PORT": "abc"}))
	assert.Error(t, err)

	_, err = parseOptions([]string{"-P", "70000"}, env(nil))
	assert.Error(t, err)

	_, err = parseOptions([]string{"-unknown"}, env(nil))
	assert.Error(t, err)
}

func TestFormatPlayers(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "没有在线玩家\n", formatPlayers(nil))
	assert.Equal(t, "Steve\nAlex [OP] [AFK]\n", formatPlayers([]mccontrol.PlayerRecord{
		{Name: "Steve"},
		{Name: "§cAlex", IsOp: true, AFK: true},
	}))
}

func newTestClient(t *testing.T, exec mccontrol.ExecutorFunc, enableColor bool) (*client, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	controller, err := mccontrol.NewMinecraftController(
		mccontrol.ServerConfig{Host: "localhost", RconPort: 25575, Password: "pw"},
		mccontrol.WithExecutor(exec),
	)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	return &client{
		controller: controller,
		options:    &cliOptions{enableColor: enableColor},
		out:        &out,
		errOut:     &errOut,
	}, &out, &errOut
}

func TestRunCommands(t *testing.T) {
	var sent []string
	c, out, errOut := newTestClient(t, func(ctx context.Context, cmd string) (string, error) {
		sent = append(sent, cmd)
		return "§aok " + cmd, nil
	}, false)

	assert.Equal(t, 0, c.runCommands(context.Background(), []string{"list", "say hi"}))
	assert.Equal(t, []string{"list", "say hi"}, sent)
	assert.Equal(t, "ok list\nok say hi\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunCommandsColor(t *testing.T) {
	c, out, _ := newTestClient(t, func(ctx context.Context, cmd string) (string, error) {
		return "§aok", nil
	}, true)

	assert.Equal(t, 0, c.runCommands(context.Background(), []string{"list"}))
	assert.Equal(t, mccontrol.ColorCodesToANSI("§aok")+"\n", out.String())
}

func TestRunCommandsStopsOnError(t *testing.T) {
	var sent []string
	c, _, errOut := newTestClient(t, func(ctx context.Context, cmd string) (string, error) {
		sent = append(sent, cmd)
		return "", &mccontrol.Error{Kind: mccontrol.KindAuthentication, Op: "auth"}
	}, false)

	assert.Equal(t, 1, c.runCommands(context.Background(), []string{"list", "say hi"}))
	assert.Equal(t, []string{"list"}, sent)
	assert.Equal(t, "Authentication failed.\n", errOut.String())
}

func TestPrintPlayers(t *testing.T) {
	c, out, _ := newTestClient(t, func(ctx context.Context, cmd string) (string, error) {
		switch cmd {
		case "list":
			return "There are 2 of a max of 20 players online: Steve, Alex", nil
		case "ops":
			return "Ops: Alex", nil
		}
		return "", nil
	}, false)

	assert.Equal(t, 0, c.printPlayers(context.Background()))
	assert.Equal(t, "Steve\nAlex [OP]\n", out.String())
}
