package mccontrol

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// SessionState 表示RCON会话所处的阶段
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateAuthenticating
	StateReady
	StateExecuting
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateExecuting:
		return "executing"
	case StateClosed:
		return "closed"
	default:
		return "SessionState(" + strconv.Itoa(int(s)) + ")"
	}
}

// RconSession 持有一条TCP连接，只用于执行一条命令：
// 连接 -> 认证 -> 执行 -> 关闭。会话不可并发使用，也不可复用。
type RconSession struct {
	conn  net.Conn
	state SessionState
	opts  options
}

// Dial 建立到RCON服务器的TCP连接。
// 连接失败返回 ErrConnectivity，超时返回 ErrTimeout，两种情况都只尝试一次。
func Dial(ctx context.Context, host string, port int, opts ...Option) (*RconSession, error) {
	s := &RconSession{state: StateConnecting, opts: buildOptions(opts)}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	dialCtx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	conn, err := s.opts.dial(dialCtx, "tcp", address)
	if err != nil {
		s.state = StateClosed
		if isTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(KindTimeout, "dial", err)
		}
		return nil, newError(KindConnectivity, "dial", err)
	}

	s.conn = conn
	s.state = StateAuthenticating
	s.opts.logger.Debug("rcon connected", slog.String("address", address))
	return s, nil
}

// State 返回会话当前状态
func (s *RconSession) State() SessionState {
	return s.state
}

// Authenticate 发送认证包并读取一个回应。
// 只要读到回应且其ID不是-1即视为成功；失败时连接会被关闭。
func (s *RconSession) Authenticate(ctx context.Context, password string) error {
	if s.state != StateAuthenticating {
		return fmt.Errorf("rcon: cannot authenticate in state %s", s.state)
	}

	id := s.opts.requestID()
	if err := s.send(ctx, id, PacketTypeAuth, []byte(password)); err != nil {
		s.Close()
		return err
	}

	resp, err := s.receive(ctx)
	if err != nil {
		s.Close()
		if KindOf(err) == KindConnectivity {
			return newError(KindAuthentication, "auth", fmt.Errorf("no reply to auth packet: %w", err))
		}
		return err
	}

	if resp.ID == -1 {
		s.Close()
		return newError(KindAuthentication, "auth", errors.New("server rejected password"))
	}

	s.state = StateReady
	return nil
}

// Execute 发送命令并读取一个回应包，随后无论结果如何都关闭连接。
// 服务器在回应前关闭连接不算错误，返回空字符串。
func (s *RconSession) Execute(ctx context.Context, command string) (string, error) {
	if s.state != StateReady {
		return "", fmt.Errorf("rcon: cannot execute in state %s", s.state)
	}
	s.state = StateExecuting
	defer s.Close()

	id := s.opts.requestID()
	if err := s.send(ctx, id, PacketTypeCommand, []byte(command)); err != nil {
		return "", err
	}

	resp, err := s.receive(ctx)
	if err != nil {
		if isNoReply(err) {
			return "", nil
		}
		return "", err
	}

	return string(resp.Body), nil
}

// Close 关闭连接，可重复调用
func (s *RconSession) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *RconSession) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(s.opts.timeout)
	if cd, ok := ctx.Deadline(); ok && cd.Before(d) {
		return cd
	}
	return d
}

func (s *RconSession) send(ctx context.Context, id, typ int32, payload []byte) error {
	data, err := EncodePacket(id, typ, payload)
	if err != nil {
		return err
	}
	s.logPacket(ctx, "sending packet", typ, data)

	if err := s.conn.SetWriteDeadline(s.deadline(ctx)); err != nil {
		return newError(KindConnectivity, "write", err)
	}
	if _, err := s.conn.Write(data); err != nil {
		if isTimeout(err) {
			return newError(KindTimeout, "write", err)
		}
		return newError(KindConnectivity, "write", err)
	}
	return nil
}

func (s *RconSession) receive(ctx context.Context) (*Packet, error) {
	if err := s.conn.SetReadDeadline(s.deadline(ctx)); err != nil {
		return nil, newError(KindConnectivity, "read", err)
	}
	p, err := DecodePacket(s.conn)
	if err != nil {
		return nil, err
	}
	if s.opts.logger.Enabled(ctx, slog.LevelDebug) {
		s.opts.logger.LogAttrs(ctx, slog.LevelDebug, "received packet",
			slog.Int("id", int(p.ID)),
			slog.Int("type", int(p.Type)),
			slog.String("body", hex.EncodeToString(p.Body)))
	}
	return p, nil
}

// logPacket 以十六进制记录发出的数据包，认证包的密码会被替换
func (s *RconSession) logPacket(ctx context.Context, msg string, typ int32, data []byte) {
	if !s.opts.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	if typ == PacketTypeAuth {
		masked := make([]byte, 12, 17)
		copy(masked, data[:12])
		data = append(masked, 'x', 'x', 'x', 'x', 'x')
	}
	s.opts.logger.LogAttrs(ctx, slog.LevelDebug, msg, slog.String("packet", hex.EncodeToString(data)))
}
