package upgrade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/upgrader"
	"github.com/dep2p/go-upgrade/pkg/lib/log"
)

var logger = log.Logger("upgrade/node")

// Accept 出错后重试前的等待时间
const acceptRetryDelay = 50 * time.Millisecond

// Node 持有一条拨号连接和一个监听 socket
//
// Run 之后，拨号握手与接受循环作为同一任务组中的两个任务运行，
// 每条入站连接在自己的 goroutine 中以监听方身份握手。
type Node struct {
	up     *upgrader.Upgrader
	dial   *upgrader.Conn
	ln     net.Listener
	hook   AcceptHook
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	inbound map[*upgrader.Conn]struct{}
}

// New 创建节点
//
// 参数：
//   - dial: 已连接到对端的 socket，节点以拨号方身份在其上握手
//   - ln: 监听 socket，节点以监听方身份升级每条入站连接
//
// 节点接管 dial 与 ln 的所有权，Close 时一并关闭。
func New(dial net.Conn, ln net.Listener, opts ...Option) (*Node, error) {
	if dial == nil {
		return nil, ErrNilDialConn
	}
	if ln == nil {
		return nil, ErrNilListener
	}

	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	up := o.upgrader
	if up == nil {
		id := o.identity
		if id == nil {
			var err error
			if id, err = identity.Generate(); err != nil {
				return nil, err
			}
		}

		var err error
		up, err = upgrader.New(id, upgrader.Config{
			HandshakeTimeout: o.timeout,
			Metrics:          o.metrics,
			Logger:           o.logger,
		})
		if err != nil {
			return nil, err
		}
	}

	dialConn, err := up.NewConn(dial)
	if err != nil {
		return nil, err
	}

	l := o.logger
	if l == nil {
		l = logger.With()
	}

	n := &Node{
		up:      up,
		dial:    dialConn,
		ln:      ln,
		hook:    o.hook,
		logger:  l,
		inbound: make(map[*upgrader.Conn]struct{}),
	}
	n.logger.Info("节点已创建", "peer", n.PeerID(), "listen", ln.Addr().String())
	return n, nil
}

// PeerID 返回本地 PeerID
func (n *Node) PeerID() peer.ID {
	return n.up.Identity().PeerID()
}

// Dialer 返回拨号连接
func (n *Node) Dialer() *upgrader.Conn {
	return n.dial
}

// ListenAddr 返回监听地址
func (n *Node) ListenAddr() net.Addr {
	return n.ln.Addr()
}

// Inbound 返回已成功握手的入站连接
func (n *Node) Inbound() []*upgrader.Conn {
	n.mu.Lock()
	defer n.mu.Unlock()

	conns := make([]*upgrader.Conn, 0, len(n.inbound))
	for c := range n.inbound {
		conns = append(conns, c)
	}
	return conns
}

// Run 运行拨号握手与接受循环，阻塞到两者都结束
//
// 拨号握手成功后接受循环继续运行；拨号握手失败会取消整个任务组：
// 监听 socket 被关闭，进行中的入站握手被中断，Run 返回该错误。
// 单条入站连接的失败只记录日志并交给 AcceptHook；单次 Accept 出错只记录日志后重试。
// 两者都不会影响节点。
// ctx 结束视为正常退出，返回 nil。
func (n *Node) Run(ctx context.Context) error {
	n.mu.Lock()
	switch {
	case n.closed:
		n.mu.Unlock()
		return ErrNodeClosed
	case n.running:
		n.mu.Unlock()
		return ErrAlreadyRunning
	}
	n.running = true
	n.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() {
		_ = n.ln.Close()
	})
	defer stop()

	var handshakes sync.WaitGroup
	defer handshakes.Wait()

	g.Go(func() error {
		if err := n.dial.Dial(gctx); err != nil {
			return fmt.Errorf("dial %s: %w", n.dial.RemoteAddr(), err)
		}
		n.logger.Info("拨号连接已建立", "remote", n.dial.RemotePeer())
		return nil
	})

	g.Go(func() error {
		n.acceptLoop(gctx, &handshakes)
		return nil
	})

	err := g.Wait()
	if err != nil && ctx.Err() == nil {
		n.logger.Error("节点退出", "error", err)
		return err
	}
	return nil
}

// acceptLoop 接受入站连接，每条连接交给独立的 goroutine
//
// 只有 ctx 结束或监听 socket 关闭时返回，其他 Accept 错误记录后稍等重试。
func (n *Node) acceptLoop(ctx context.Context, handshakes *sync.WaitGroup) {
	for {
		raw, err := n.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			n.logger.Warn("接受连接失败", "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}
		n.logger.Info("收到入站连接", "remote_addr", raw.RemoteAddr().String())

		handshakes.Add(1)
		go func() {
			defer handshakes.Done()
			n.handleInbound(ctx, raw)
		}()
	}
}

func (n *Node) handleInbound(ctx context.Context, raw net.Conn) {
	conn, err := n.up.Upgrade(ctx, raw, upgrader.Listener)
	if err != nil {
		n.logger.Warn("入站握手失败", "remote_addr", raw.RemoteAddr().String(), "error", err)
		_ = raw.Close()
	} else if !n.track(conn) {
		_ = conn.Close()
	}

	if n.hook != nil {
		n.hook(conn, err)
	}
}

// track 记录入站连接，节点已关闭时返回 false
func (n *Node) track(c *upgrader.Conn) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return false
	}
	n.inbound[c] = struct{}{}
	return true
}

// Close 关闭监听 socket、拨号连接和所有入站连接
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	inbound := n.inbound
	n.inbound = nil
	n.mu.Unlock()

	err := multierr.Combine(
		ignoreClosed(n.ln.Close()),
		ignoreClosed(n.dial.Close()),
	)
	for c := range inbound {
		err = multierr.Append(err, ignoreClosed(c.Close()))
	}
	return err
}

func ignoreClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
