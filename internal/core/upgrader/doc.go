// Package upgrader 驱动单条连接完成升级握手
//
// # 概述
//
// Conn 持有一个原始 net.Conn，按固定顺序把它升级为经过 Noise 加密、
// 已协商好多路复用器名称的连接。拨号方与监听方共享同一个状态循环，
// 只在每个阶段调用的协商原语上不同。
//
// # 状态机
//
//	Initialization ─► Negotiation ─► NoiseStage ─► Multiplex ─► Established
//	       │               │              │             │
//	       └───────────────┴──────────────┴─────────────┴──► Failed
//
// 每个状态对应的动作（拨号方 / 监听方）：
//
//  1. Initialization: Concurrent(/multistream/1.0.0)
//  2. Negotiation: Dial(/noise) / Listen(/noise)
//  3. NoiseStage: XX 三条消息，交换并校验身份，得到 Transport
//  4. Multiplex: 在加密通道内 DialNoise / ListenNoise
//     依次协商 /multistream/1.0.0 与 /yamux/1.0.0
//
// 只有 Multiplex 状态持有 Transport。Established 与 Failed 为终态，
// 任何阶段出错都进入 Failed，Dial/Listen 返回 ErrHandshakeFailed 包装的原因。
//
// # 使用示例
//
//	id, _ := identity.Generate()
//	raw, _ := net.Dial("tcp", "127.0.0.1:30333")
//
//	conn, _ := upgrader.NewConn(raw, id, upgrader.WithTimeout(10*time.Second))
//	if err := conn.Dial(ctx); err != nil {
//	    return err
//	}
//	fmt.Println("remote peer:", conn.RemotePeer())
//
// # 取消
//
// ctx 结束时会把底层连接的截止时间设为过去，阻塞中的读写立即返回，
// 连接随即进入 Failed。
package upgrader
