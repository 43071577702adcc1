package upgrader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/metrics"
	"github.com/dep2p/go-upgrade/internal/core/multistream"
	"github.com/dep2p/go-upgrade/internal/core/security/noise"
	"github.com/dep2p/go-upgrade/pkg/lib/log"
)

var logger = log.Logger("core/upgrader")

// 让阻塞中的 I/O 立即超时
var aLongTimeAgo = time.Unix(1, 0)

// Conn 一条正在升级或已升级的连接
//
// 身份只读共享，可被同一节点的多条 Conn 同时使用。
// 状态查询方法可以在握手进行中从其他 goroutine 调用。
type Conn struct {
	wire    net.Conn
	id      *identity.Identity
	logger  *slog.Logger
	metrics *metrics.Recorder
	timeout time.Duration

	mu      sync.Mutex
	state   State
	role    Role
	started bool
	remote  noise.RemoteIdentity
}

// NewConn 创建处于 Initialization 状态的连接
func NewConn(wire net.Conn, id *identity.Identity, opts ...Option) (*Conn, error) {
	if wire == nil {
		return nil, ErrNilConn
	}
	if id == nil {
		return nil, ErrNilIdentity
	}

	c := &Conn{
		wire:  wire,
		id:    id,
		state: Initialization{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.With()
	}
	return c, nil
}

// Dial 以拨号方身份完成握手
//
// 返回 nil 表示连接已进入 Established；
// 否则连接处于 Failed，错误包装了 ErrHandshakeFailed 与具体原因。
func (c *Conn) Dial(ctx context.Context) error {
	return c.run(ctx, Dialer)
}

// Listen 以监听方身份完成握手
func (c *Conn) Listen(ctx context.Context) error {
	return c.run(ctx, Listener)
}

func (c *Conn) run(ctx context.Context, role Role) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started, c.role = true, role
	c.mu.Unlock()

	start := time.Now()
	l := c.logger.With("role", role.String(), "local", c.id.PeerID())
	l.Debug("开始握手", "remote_addr", addrString(c.wire.RemoteAddr()))

	if c.timeout > 0 {
		if err := c.wire.SetDeadline(start.Add(c.timeout)); err != nil {
			l.Debug("设置截止时间失败", "error", err)
		}
	}
	expired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.wire.SetDeadline(aLongTimeAgo)
		close(expired)
	})

	err := c.drive(ctx, c.metrics.MeterConn(c.wire, role.String()), stepsFor(role), l)

	stopped := stop()
	if err == nil {
		// 取消与握手完成同时发生时，等过期的截止时间写入后再清除
		if !stopped {
			<-expired
		}
		if !stopped || c.timeout > 0 {
			_ = c.wire.SetDeadline(time.Time{})
		}
	}
	elapsed := time.Since(start)
	c.metrics.Finish(role.String(), err, elapsed)

	if err != nil {
		l.Warn("握手失败", "error", err, "elapsed", elapsed)
		return err
	}
	l.Info("握手完成", "remote", c.RemotePeer(), "elapsed", elapsed)
	return nil
}

// drive 反复执行当前状态的动作，直到进入终态
func (c *Conn) drive(ctx context.Context, rw io.ReadWriter, st steps, l *slog.Logger) error {
	for {
		current := c.State()
		switch s := current.(type) {
		case Established:
			return nil
		case Failed:
			return s.Err
		}

		next := c.advance(ctx, rw, st, current)
		if err := c.setState(next); err != nil {
			c.fail(err)
			continue
		}
		l.Debug("状态迁移", "from", current.Stage(), "to", next.Stage())
		c.metrics.Transition(c.Role().String(), next.Stage().String())
	}
}

// advance 执行 current 的动作，返回下一个状态
func (c *Conn) advance(ctx context.Context, rw io.ReadWriter, st steps, current State) State {
	var (
		next State
		err  error
	)

	switch s := current.(type) {
	case Initialization:
		ok, e := multistream.Concurrent(rw, rw, multistream.Multistream)
		next, err = Negotiation{}, expect(multistream.Multistream, ok, e)

	case Negotiation:
		ok, e := st.negotiate(rw)
		next, err = NoiseStage{}, expect(multistream.Noise, ok, e)

	case NoiseStage:
		var (
			t      *noise.Transport
			remote noise.RemoteIdentity
		)
		t, remote, err = st.secure(rw, c.id)
		if err == nil {
			c.mu.Lock()
			c.remote = remote
			c.mu.Unlock()
		}
		next = Multiplex{Transport: t}

	case Multiplex:
		for _, p := range []multistream.Protocol{multistream.Multistream, multistream.Yamux} {
			ok, e := st.multiplex(rw, s.Transport, p)
			if err = expect(p, ok, e); err != nil {
				break
			}
		}
		next = Established{}

	default:
		err = fmt.Errorf("%w: no action for %s", ErrInvalidTransition, current.Stage())
	}

	if err != nil {
		if cause := context.Cause(ctx); cause != nil {
			err = fmt.Errorf("%w: %w", cause, err)
		}
		return Failed{Err: fmt.Errorf("%w: %s: %w", ErrHandshakeFailed, current.Stage(), err)}
	}
	return next
}

// expect 把协商结果中的不一致转换为错误
func expect(p multistream.Protocol, ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrProtocolMismatch, p)
	}
	return nil
}

func (c *Conn) setState(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := Transition(c.state, next); err != nil {
		return err
	}
	c.state = next
	return nil
}

// fail 在非法迁移时强制进入 Failed
func (c *Conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Failed{Err: fmt.Errorf("%w: %w", ErrHandshakeFailed, err)}
}

// ============================================================================
//                              查询
// ============================================================================

// State 返回当前状态
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Completed 是否已进入 Established
func (c *Conn) Completed() bool {
	return c.State().Stage() == StageEstablished
}

// Failed 是否已进入 Failed
func (c *Conn) Failed() bool {
	return c.State().Stage() == StageFailed
}

// Err 返回失败原因，未失败时返回 nil
func (c *Conn) Err() error {
	if f, ok := c.State().(Failed); ok {
		return f.Err
	}
	return nil
}

// Role 返回角色，握手开始前为 Dialer
func (c *Conn) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// PeerID 返回本地 PeerID
func (c *Conn) PeerID() peer.ID {
	return c.id.PeerID()
}

// RemotePeer 返回经过校验的远端 PeerID，身份交换完成前为空
func (c *Conn) RemotePeer() peer.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote.PeerID
}

// RemoteStatic 返回远端 Noise 静态公钥，身份交换完成前为 nil
func (c *Conn) RemoteStatic() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remote.Static
}

// RemoteAddr 返回底层连接的远端地址
func (c *Conn) RemoteAddr() net.Addr {
	return c.wire.RemoteAddr()
}

// Close 关闭底层连接
//
// 握手进行中调用会使阻塞的 I/O 出错，连接随后进入 Failed。
func (c *Conn) Close() error {
	return c.wire.Close()
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}
