// Package noise 实现 libp2p-noise 安全通道的握手引擎
//
// 本实现遵循 libp2p-noise 规范：
// https://github.com/libp2p/specs/blob/master/noise/README.md
//
// # 协议
//
// 使用固定的 Noise_XX_25519_ChaChaPoly_SHA256 模式（不可配置）：
//   - XX: 三轮握手，双方相互认证
//   - 25519: Curve25519 用于 DH 密钥交换
//   - ChaChaPoly: ChaCha20-Poly1305 用于对称加密
//   - SHA256: 用于 HKDF 密钥派生
//
// 底层原语由 github.com/flynn/noise 提供。
//
// # 握手流程
//
//	-> e                              (发起者 Hello)
//	<- e, ee, s, es, payload          (响应者发送身份)
//	-> s, se, payload                 (发起者发送身份)
//
// payload 包含 Ed25519 身份公钥和对
// "noise-libp2p-static-key:" + Noise 静态公钥 的签名，
// 把 Noise 静态公钥绑定到长期身份。
//
// # 两个阶段
//
// Handshake 与 Transport 都实现 Session（Encrypt / Decrypt / RemoteStatic）。
// Handshake.IntoTransport 在三条消息交换完毕后消耗握手阶段对象并产出
// 传输阶段对象；被消耗的 Handshake 之后的任何调用都返回 ErrSessionConsumed。
//
// # 线上帧
//
//	u16_big_endian(len(payload)) || payload
//
// 单帧最大 65536 字节，明文 payload 最大 65536 - 1024（为加密膨胀预留）。
//
// # 并发
//
// Session 不是并发安全的：每条连接独占自己的 Session 和缓冲区。
package noise
