package mccontrol

import (
	"errors"
	"fmt"
)

// ErrorKind 表示RCON调用失败的类别
type ErrorKind int

const (
	// KindConnectivity 无法建立或维持TCP连接
	KindConnectivity ErrorKind = iota + 1
	// KindProtocol 收到格式错误的数据包
	KindProtocol
	// KindAuthentication 服务器拒绝密码或未应答认证包
	KindAuthentication
	// KindTimeout 在限定时间内没有收到数据
	KindTimeout
)

// String 返回错误类别名称
func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindProtocol:
		return "protocol"
	case KindAuthentication:
		return "authentication"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// 可配合 errors.Is 使用的哨兵错误
var (
	ErrConnectivity   = &Error{Kind: KindConnectivity}
	ErrProtocol       = &Error{Kind: KindProtocol}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrTimeout        = &Error{Kind: KindTimeout}
)

// Error 是RCON核心返回的结构化错误
type Error struct {
	Kind ErrorKind // 错误类别
	Op   string    // 出错的操作，如 dial、auth、read
	Err  error     // 底层错误
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return "rcon: " + e.Kind.String() + " error"
	case e.Err == nil:
		return fmt.Sprintf("rcon %s: %s error", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("rcon: %v", e.Err)
	default:
		return fmt.Sprintf("rcon %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 只比较错误类别，使 errors.Is(err, ErrTimeout) 成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 返回err中的错误类别，不是RCON错误时返回0
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Describe 把错误折叠成面向文本界面的一行描述
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	detail := ""
	if e.Err != nil {
		detail = e.Err.Error()
	}

	switch e.Kind {
	case KindConnectivity:
		return "Cannot connect: " + detail
	case KindAuthentication:
		return "Authentication failed."
	case KindTimeout:
		return "Timed out: " + detail
	case KindProtocol:
		return "Protocol error: " + detail
	default:
		return err.Error()
	}
}
