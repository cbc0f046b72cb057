package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"city.newnan/rcon-console/internal/config"
	"city.newnan/rcon-console/internal/middleware"
	"city.newnan/rcon-console/internal/model"
	"city.newnan/rcon-console/internal/secret"
	"city.newnan/rcon-console/pkg/mccontrol"
)

type recordingPublisher struct {
	mu      sync.Mutex
	entries map[string][]model.ConsoleEntry
}

func (p *recordingPublisher) PublishEntries(profileID string, entries []model.ConsoleEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		p.entries = make(map[string][]model.ConsoleEntry)
	}
	p.entries[profileID] = append(p.entries[profileID], entries...)
}

type fixture struct {
	db        *gorm.DB
	cfg       *config.Config
	profiles  *ProfileService
	console   *ConsoleService
	publisher *recordingPublisher
}

func newFixture(t *testing.T, executor mccontrol.CommandExecutor) *fixture {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.ServerProfile{}, &model.ConsoleEntry{}))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTIssuer:       "rcon-console",
		JWTExpireTime:   time.Hour,
		RconTimeout:     time.Second,
		RconDefaultPort: 25575,
		GameDefaultPort: 25565,
	}
	cipher, err := secret.NewCipher("test-key")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	profiles := NewProfileService(gormDB, cipher, cfg)
	console := NewConsoleService(gormDB, profiles, NewProfileLocks(time.Minute), nil, pub)
	if executor != nil {
		console.ControllerOptions = []mccontrol.ControllerOption{mccontrol.WithExecutor(executor)}
	}
	return &fixture{db: gormDB, cfg: cfg, profiles: profiles, console: console, publisher: pub}
}

func (f *fixture) login(t *testing.T, readOnly bool) *model.ServerProfile {
	t.Helper()
	profile, _, err := f.profiles.Login(model.LoginRequest{Host: "mc.example.com", Password: "hunter2", ReadOnly: readOnly})
	require.NoError(t, err)
	return profile
}

func scripted(responses map[string]string, failures map[string]error) mccontrol.CommandExecutor {
	return mccontrol.ExecutorFunc(func(ctx context.Context, cmd string) (string, error) {
		if err, ok := failures[cmd]; ok {
			return "", err
		}
		return responses[cmd], nil
	})
}

func TestLoginStoresEncryptedProfile(t *testing.T) {
	f := newFixture(t, nil)

	profile, token, err := f.profiles.Login(model.LoginRequest{Host: " mc.example.com ", Password: "hunter2"})
	require.NoError(t, err)

	assert.Equal(t, "mc.example.com", profile.Host)
	assert.Equal(t, 25575, profile.RconPort)
	assert.Equal(t, 25565, profile.GamePort)
	assert.Equal(t, model.RoleOperator, profile.Role)
	assert.NotContains(t, profile.PasswordCipher, "hunter2")

	claims, err := middleware.ParseToken(token, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID)
	assert.Equal(t, model.RoleOperator, claims.Role)

	stored, err := f.profiles.GetProfile(profile.ID)
	require.NoError(t, err)
	serverConfig, err := f.profiles.ServerConfig(stored)
	require.NoError(t, err)
	assert.Equal(t, mccontrol.ServerConfig{
		Host:     "mc.example.com",
		RconPort: 25575,
		GamePort: 25565,
		Password: "hunter2",
		Timeout:  time.Second,
	}, serverConfig)
}

func TestLoginReadOnly(t *testing.T) {
	f := newFixture(t, nil)
	profile, _, err := f.profiles.Login(model.LoginRequest{Host: "h", Port: 1234, Password: "pw", ReadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, profile.Role)
	assert.Equal(t, 1234, profile.RconPort)
}

func TestLoginRequiresHost(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.profiles.Login(model.LoginRequest{Host: "   ", Password: "pw"})
	assert.Error(t, err)
}

func TestCommandRecordsTranscript(t *testing.T) {
	f := newFixture(t, scripted(map[string]string{"say hi": "said hi"}, nil))
	profile := f.login(t, false)

	result, err := f.console.Command(context.Background(), profile.ID, "say hi")
	require.NoError(t, err)
	assert.Equal(t, "said hi", result)

	entries, err := loadTranscript(f.db, profile.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ">", entries[0].Direction)
	assert.Equal(t, "say hi", entries[0].Text)
	assert.Equal(t, "<", entries[1].Direction)
	assert.Equal(t, "said hi", entries[1].Text)

	assert.Len(t, f.publisher.entries[profile.ID], 2)

	lines, err := f.console.ConsoleLog(profile.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] > say hi$`, lines[0])
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] < said hi$`, lines[1])
}

func TestCommandFailureBecomesResultText(t *testing.T) {
	authErr := &mccontrol.Error{Kind: mccontrol.KindAuthentication, Op: "auth"}
	f := newFixture(t, scripted(nil, map[string]error{"list": authErr}))
	profile := f.login(t, false)

	result, err := f.console.Command(context.Background(), profile.ID, "list")
	require.NoError(t, err)
	assert.Equal(t, "Authentication failed.", result)

	lines, err := f.console.ConsoleLog(profile.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "< Authentication failed.")
}

func TestCommandUnknownProfile(t *testing.T) {
	f := newFixture(t, scripted(nil, nil))
	_, err := f.console.Command(context.Background(), "missing", "list")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestTranscriptsAreSeparatedByProfile(t *testing.T) {
	f := newFixture(t, scripted(map[string]string{"a": "1", "b": "2"}, nil))
	p1 := f.login(t, false)
	p2 := f.login(t, false)

	_, err := f.console.Command(context.Background(), p1.ID, "a")
	require.NoError(t, err)
	_, err = f.console.Command(context.Background(), p2.ID, "b")
	require.NoError(t, err)

	l1, err := f.console.ConsoleLog(p1.ID)
	require.NoError(t, err)
	l2, err := f.console.ConsoleLog(p2.ID)
	require.NoError(t, err)
	assert.Len(t, l1, 2)
	assert.Len(t, l2, 2)
	assert.Contains(t, l1[0], "> a")
	assert.Contains(t, l2[0], "> b")
}

func TestPlayers(t *testing.T) {
	f := newFixture(t, scripted(map[string]string{
		"list": "There are 2 of a max 20 players online: Steve, Alex [AFK]",
		"ops":  "Opped players: alex",
	}, nil))
	profile := f.login(t, true)

	players, err := f.console.Players(context.Background(), profile.ID, false)
	require.NoError(t, err)
	want := []mccontrol.PlayerRecord{
		{Name: "Steve", IsOp: false, AFK: false},
		{Name: "Alex", IsOp: true, AFK: true},
	}
	if diff := cmp.Diff(want, players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}

	players, err = f.console.Players(context.Background(), profile.ID, true)
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, mccontrol.PlayerRecord{Name: TestPlayerName}, players[2])

	// list/ops 查询不写入控制台记录
	lines, err := f.console.ConsoleLog(profile.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlayersListFailure(t *testing.T) {
	f := newFixture(t, scripted(nil, map[string]error{"list": errors.New("boom")}))
	profile := f.login(t, false)

	_, err := f.console.Players(context.Background(), profile.ID, false)
	assert.Error(t, err)
}

func TestLogoutDeletesProfileAndTranscript(t *testing.T) {
	f := newFixture(t, scripted(map[string]string{"list": "x"}, nil))
	profile := f.login(t, false)
	_, err := f.console.Command(context.Background(), profile.ID, "list")
	require.NoError(t, err)

	require.NoError(t, f.console.Logout(profile.ID))
	require.NoError(t, f.console.Logout(profile.ID))

	_, err = f.profiles.GetProfile(profile.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	var count int64
	require.NoError(t, f.db.Model(&model.ConsoleEntry{}).Where("profile_id = ?", profile.ID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, f.console.Locks.Len())
}
