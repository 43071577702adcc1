// Package upgrade 把原始 TCP 连接升级为经过身份认证的加密连接
//
// # 核心概念
//
//   - Node: 持有一条主动拨号的连接和一个监听 socket
//   - upgrader.Conn: 单条连接的握手状态机
//   - identity.Identity: 长期 Ed25519 身份，所有连接只读共享
//
// # 快速开始
//
//	import upgrade "github.com/dep2p/go-upgrade"
//
//	ln, _ := net.Listen("tcp", "127.0.0.1:0")
//	raw, _ := net.Dial("tcp", "10.0.0.2:30333")
//
//	node, err := upgrade.New(raw, ln,
//	    upgrade.WithHandshakeTimeout(10*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	// 阻塞到 ctx 结束或拨号握手失败
//	err = node.Run(ctx)
//
// # 握手流程
//
//	dialer                                   listener
//	  │ ── /multistream/1.0.0 ──►◄── /multistream/1.0.0 ── │  并发读写
//	  │ ── /noise ─────────────────────────────────────►   │
//	  │ ◄───────────────────────────────────── /noise ──   │  回显
//	  │ ── Noise XX msg1 (e) ──────────────────────────►   │
//	  │ ◄── msg2 (e, ee, s, es, 身份) ──────────────────   │
//	  │ ── msg3 (s, se, 身份) ─────────────────────────►   │
//	  │ ══ 加密: /multistream/1.0.0, /yamux/1.0.0 ══════   │
//
// # 依赖注入
//
// NewApp 使用 go.uber.org/fx 按配置组装身份、指标、升级器和节点：
//
//	app, node, err := upgrade.NewApp(cfg)
//	_ = app.Start(ctx)
//	defer app.Stop(ctx)
//	err = node.Run(ctx)
package upgrade
