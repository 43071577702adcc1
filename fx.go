package upgrade

import (
	"context"
	"fmt"

	manet "github.com/multiformats/go-multiaddr/net"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-upgrade/config"
	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/metrics"
	"github.com/dep2p/go-upgrade/internal/core/upgrader"
)

// Params 节点依赖参数
type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Upgrader   *upgrader.Upgrader
	UnifiedCfg *config.Config
}

// Module 返回节点的 Fx 模块
func Module() fx.Option {
	return fx.Module("upgrade",
		fx.Provide(ProvideNode),
	)
}

// ProvideNode 按配置监听本地地址、拨号对端并创建节点
//
// 先绑定监听地址再拨号，这样两个节点互为对端时都能接受到对方的连接。
// 监听和拨号在构造时完成（fx.New 期间），而不是在 OnStart 中：
// 节点持有的两个 socket 是它的构造参数。OnStop 负责关闭它们；
// 应用构造成功但从未启动时，调用方需要自行 node.Close()。
func ProvideNode(p Params) (*Node, error) {
	listenAddr, err := p.UnifiedCfg.Listen.Multiaddr()
	if err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}
	peerAddr, err := p.UnifiedCfg.Peer.Multiaddr()
	if err != nil {
		return nil, fmt.Errorf("peer address: %w", err)
	}

	ln, err := manet.Listen(listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", listenAddr, err)
	}
	logger.Info("正在监听", "addr", ln.Multiaddr().String())

	dial, err := manet.Dial(peerAddr)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("dial %s: %w", peerAddr, err)
	}

	node, err := New(dial, manet.NetListener(ln), WithUpgrader(p.Upgrader))
	if err != nil {
		_ = dial.Close()
		_ = ln.Close()
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return node.Close()
		},
	})
	return node, nil
}

// NewApp 根据配置组装 Fx 应用
//
// 加载顺序（按依赖）：identity → metrics → upgrader → node。
// 返回的应用尚未启动，但监听 socket 与拨号连接已经打开；
// 节点在 app.Start 之后通过 node.Run 运行。
func NewApp(cfg *config.Config, extra ...fx.Option) (*fx.App, *Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	var node *Node
	opts := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.Supply(cfg),
		identity.Module(),
		metrics.Module(),
		upgrader.Module(),
		Module(),
		fx.Populate(&node),
	}
	opts = append(opts, extra...)

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return app, node, nil
}
