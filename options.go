package upgrade

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/metrics"
	"github.com/dep2p/go-upgrade/internal/core/upgrader"
)

// Option 节点配置选项函数
type Option func(*options) error

// AcceptHook 每条入站连接握手结束后调用
//
// err 为 nil 表示握手成功。钩子在该连接自己的 goroutine 中执行。
type AcceptHook func(conn *upgrader.Conn, err error)

// options 内部选项结构
type options struct {
	identity *identity.Identity
	upgrader *upgrader.Upgrader
	metrics  *metrics.Recorder
	logger   *slog.Logger
	timeout  time.Duration
	hook     AcceptHook
}

// WithIdentity 使用已有身份，默认生成新的 Ed25519 身份
func WithIdentity(id *identity.Identity) Option {
	return func(o *options) error {
		if id == nil {
			return errors.New("identity is nil")
		}
		o.identity = id
		return nil
	}
}

// WithUpgrader 使用已构建的升级器
//
// 设置后 WithIdentity、WithMetrics、WithHandshakeTimeout 不再生效。
func WithUpgrader(u *upgrader.Upgrader) Option {
	return func(o *options) error {
		if u == nil {
			return errors.New("upgrader is nil")
		}
		o.upgrader = u
		return nil
	}
}

// WithMetrics 记录握手指标
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = rec
		return nil
	}
}

// WithLogger 节点与连接使用的 logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// WithHandshakeTimeout 单条连接的握手超时，0 表示不限制
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.New("handshake timeout must not be negative")
		}
		o.timeout = d
		return nil
	}
}

// WithAcceptHook 设置入站连接握手结束时的回调
func WithAcceptHook(h AcceptHook) Option {
	return func(o *options) error {
		o.hook = h
		return nil
	}
}
