// Package identity 提供节点长期身份
//
// 身份由一对 Ed25519 密钥组成，PeerID 从公钥派生。底层密码学原语
// （密钥生成、protobuf 编码、签名、验签、PeerID 派生）全部委托给
// go-libp2p/core/crypto 与 go-libp2p/core/peer，本包只暴露握手所需的
// 最小能力集合。
//
// Identity 创建后只读，可在拨号连接和所有入站连接之间共享，无需加锁。
//
// # 使用示例
//
//	id, err := identity.Generate()
//	if err != nil {
//	    return err
//	}
//	sig, err := id.Sign(msg)
//
//	remote, pub, err := identity.Verify(encodedKey, msg, sig)
package identity
