package mccontrol

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"time"
)

const (
	// DefaultTimeout 连接和每次读取的超时时间
	DefaultTimeout = 3 * time.Second

	// MaxRequestID 随机请求ID的上限（含）
	MaxRequestID = 100000
)

// DialFunc 建立到RCON服务器的连接
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// RequestIDSource 返回下一个请求ID
type RequestIDSource func() int32

// RandomRequestID 返回 [1, MaxRequestID] 范围内的随机请求ID
func RandomRequestID() int32 {
	return rand.Int31n(MaxRequestID) + 1
}

type options struct {
	timeout   time.Duration
	requestID RequestIDSource
	logger    *slog.Logger
	dial      DialFunc
}

// Option 配置一次RCON调用
type Option func(*options)

// WithTimeout 设置连接与读取超时，非正值表示使用默认值
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRequestIDSource 替换请求ID来源，测试中可提供确定的ID
func WithRequestIDSource(src RequestIDSource) Option {
	return func(o *options) {
		if src != nil {
			o.requestID = src
		}
	}
}

// WithLogger 设置日志记录器，数据包以Debug级别记录
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDialer 替换建立连接的方式
func WithDialer(dial DialFunc) Option {
	return func(o *options) {
		if dial != nil {
			o.dial = dial
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:   DefaultTimeout,
		requestID: RandomRequestID,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dial == nil {
		d := &net.Dialer{Timeout: o.timeout}
		o.dial = d.DialContext
	}
	return o
}
