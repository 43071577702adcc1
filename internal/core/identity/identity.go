package identity

import (
	"crypto/rand"
	"fmt"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
)

// Identity 节点长期身份
type Identity struct {
	privKey crypto.PrivKey
	pubKey  crypto.PubKey
	peerID  peer.ID
}

// Generate 生成新的 Ed25519 身份
func Generate() (*Identity, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey 从已有私钥创建身份
func FromPrivateKey(priv crypto.PrivKey) (*Identity, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}

	pub := priv.GetPublic()
	id, err := peer.IDFromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("derive peer id: %w", err)
	}

	return &Identity{
		privKey: priv,
		pubKey:  pub,
		peerID:  id,
	}, nil
}

// PeerID 返回本地 PeerID
func (i *Identity) PeerID() peer.ID {
	return i.peerID
}

// PublicKey 返回身份公钥
func (i *Identity) PublicKey() crypto.PubKey {
	return i.pubKey
}

// MarshalPublicKey 返回公钥的 protobuf 编码
func (i *Identity) MarshalPublicKey() ([]byte, error) {
	return crypto.MarshalPublicKey(i.pubKey)
}

// Sign 使用身份私钥签名
func (i *Identity) Sign(msg []byte) ([]byte, error) {
	return i.privKey.Sign(msg)
}

// Verify 校验远端身份签名
//
// 参数：
//   - encodedKey: protobuf 编码的远端公钥
//   - msg: 被签名的消息
//   - sig: 签名
//
// 返回：
//   - peer.ID: 从公钥派生的远端 PeerID
//   - crypto.PubKey: 解码后的公钥
//   - error: ErrInvalidPublicKey / ErrInvalidSignature
func Verify(encodedKey, msg, sig []byte) (peer.ID, crypto.PubKey, error) {
	pub, err := crypto.UnmarshalPublicKey(encodedKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}

	ok, err := pub.Verify(msg, sig)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !ok {
		return "", nil, ErrInvalidSignature
	}

	id, err := peer.IDFromPublicKey(pub)
	if err != nil {
		return "", nil, fmt.Errorf("derive peer id: %w", err)
	}
	return id, pub, nil
}
