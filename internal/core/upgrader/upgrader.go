package upgrader

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/metrics"
)

// Config 升级器配置
type Config struct {
	// HandshakeTimeout 单条连接的握手超时，0 表示不限制
	HandshakeTimeout time.Duration

	// Metrics 指标记录器（可选）
	Metrics *metrics.Recorder

	// Logger 连接日志（可选），默认使用包级 logger
	Logger *slog.Logger
}

// Upgrader 为同一身份下的所有连接创建 Conn 并驱动握手
type Upgrader struct {
	id  *identity.Identity
	cfg Config
}

// New 创建升级器
func New(id *identity.Identity, cfg Config) (*Upgrader, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	return &Upgrader{id: id, cfg: cfg}, nil
}

// Identity 返回本地身份
func (u *Upgrader) Identity() *identity.Identity {
	return u.id
}

// NewConn 用升级器的配置包装 wire
func (u *Upgrader) NewConn(wire net.Conn) (*Conn, error) {
	return NewConn(wire, u.id,
		WithTimeout(u.cfg.HandshakeTimeout),
		WithMetrics(u.cfg.Metrics),
		WithLogger(u.cfg.Logger),
	)
}

// Upgrade 以 role 完成 wire 的握手
//
// 即使握手失败也返回 Conn，调用方可以查询失败时所处的状态。
func (u *Upgrader) Upgrade(ctx context.Context, wire net.Conn, role Role) (*Conn, error) {
	c, err := u.NewConn(wire)
	if err != nil {
		return nil, err
	}

	if role == Listener {
		err = c.Listen(ctx)
	} else {
		err = c.Dial(ctx)
	}
	return c, err
}
