// Package multistream 实现 multistream-select 协议标识的编解码与镜像协商
//
// # 线上格式
//
//	uvarint(len(name)) || name
//
// name 为以 '\n' 结尾的 ASCII 串，例如 "/multistream/1.0.0\n"、"/noise\n"、
// "/yamux/1.0.0\n"，以及表示不可用的 "na\n"。
//
// # 镜像协商
//
// 本包只实现握手所需的简化协商：发起方提议一个协议，响应方解码后把
// 解码结果原样回显（已知协议即确认，未知协议回显 "na\n"），双方比较
// 收到的字节是否与期望一致。这不是完整的 multistream-select 实现，
// 不支持重新提议。
//
//   - Concurrent: 首次交换，双方可能同时先写，读写并发进行
//   - Dial / Listen: 方向确定后，发起方先写后读，响应方先读后回显
//   - DialNoise / ListenNoise: 同上，但每个标识作为一条 Noise 传输消息收发
package multistream
