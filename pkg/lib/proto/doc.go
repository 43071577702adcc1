// Package proto 定义网络协议消息（wire format）
//
// # 子包
//
//   - noise: Noise 握手阶段携带的身份 payload
//
// pkg/lib/proto 只描述跨网络传输的字节格式，
// 消息字段编号与 libp2p 的 NoiseHandshakePayload 保持一致。
package proto
