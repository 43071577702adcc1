package noise

import (
	"errors"
	"fmt"
	"io"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/pkg/lib/log"
	noisepb "github.com/dep2p/go-upgrade/pkg/lib/proto/noise"
)

var logger = log.Logger("core/security/noise")

// payloadSigPrefix 签名消息的域分隔前缀，与 libp2p-noise 规范兼容
const payloadSigPrefix = "noise-libp2p-static-key:"

// Signer 本地长期身份的签名能力
//
// *identity.Identity 满足该接口。
type Signer interface {
	// MarshalPublicKey 返回 protobuf 编码的身份公钥
	MarshalPublicKey() ([]byte, error)

	// Sign 使用身份私钥签名
	Sign(msg []byte) ([]byte, error)
}

var _ Signer = (*identity.Identity)(nil)

// RemoteIdentity 经过校验的远端身份
type RemoteIdentity struct {
	// PeerID 从远端身份公钥派生
	PeerID peer.ID

	// PublicKey 远端身份公钥
	PublicKey crypto.PubKey

	// Static 远端 Noise 静态公钥（来自握手状态，而非 payload）
	Static []byte
}

// identityMessage 构造被签名的消息
func identityMessage(static []byte) []byte {
	msg := make([]byte, 0, len(payloadSigPrefix)+len(static))
	msg = append(msg, payloadSigPrefix...)
	return append(msg, static...)
}

// Hello 发起方发送第一条握手消息（空 payload）
func (h *Handshake) Hello(w io.Writer) error {
	n, err := SendMessage(w, h, nil)
	if err != nil {
		return fmt.Errorf("send noise hello: %w", err)
	}
	logger.Debug("已发送 Noise hello", "bytes", n)
	return nil
}

// RecvHello 响应方接收第一条握手消息
func (h *Handshake) RecvHello(r io.Reader) error {
	payload, err := RecvMessage(r, h)
	if err != nil {
		return fmt.Errorf("receive noise hello: %w", err)
	}
	if len(payload) > 0 {
		logger.Debug("Noise hello 携带了 payload，已忽略", "bytes", len(payload))
	}
	return nil
}

// SendIdentity 构造并发送本地身份 payload
//
// payload 包含本地身份公钥和对 Identity(本地 Noise 静态公钥) 的签名，不带扩展。
func (h *Handshake) SendIdentity(w io.Writer, signer Signer) error {
	key, err := signer.MarshalPublicKey()
	if err != nil {
		return fmt.Errorf("marshal identity key: %w", err)
	}

	sig, err := signer.Sign(identityMessage(h.LocalStatic()))
	if err != nil {
		return fmt.Errorf("sign noise static key: %w", err)
	}

	payload := &noisepb.NoiseHandshakePayload{
		IdentityKey: key,
		IdentitySig: sig,
	}
	data, err := payload.Marshal()
	if err != nil {
		return fmt.Errorf("encode identity payload: %w", err)
	}

	n, err := SendMessage(w, h, data)
	if err != nil {
		return fmt.Errorf("send identity: %w", err)
	}
	logger.Debug("已发送 Noise 身份", "bytes", n)
	return nil
}

// RecvIdentity 接收并校验远端身份 payload
//
// 签名消息由握手状态中协商出的远端静态公钥重建，从不取自 payload 本身，
// 防止安全通道建立后替换身份。
//
// 失败情况：
//   - ErrMissingRemoteKey: 尚未获知远端静态公钥
//   - ErrInvalidPublicKey: payload 中的身份公钥无法解码
//   - ErrIdentityVerification: 签名校验失败
func (h *Handshake) RecvIdentity(r io.Reader) (RemoteIdentity, error) {
	plaintext, err := RecvMessage(r, h)
	if err != nil {
		return RemoteIdentity{}, fmt.Errorf("receive identity: %w", err)
	}

	var payload noisepb.NoiseHandshakePayload
	if err := payload.Unmarshal(plaintext); err != nil {
		return RemoteIdentity{}, fmt.Errorf("decode identity payload: %w", err)
	}

	remoteStatic := h.RemoteStatic()
	if len(remoteStatic) == 0 {
		return RemoteIdentity{}, ErrMissingRemoteKey
	}

	id, pub, err := identity.Verify(payload.IdentityKey, identityMessage(remoteStatic), payload.IdentitySig)
	switch {
	case errors.Is(err, identity.ErrInvalidPublicKey):
		return RemoteIdentity{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	case err != nil:
		return RemoteIdentity{}, fmt.Errorf("%w: %w", ErrIdentityVerification, err)
	}

	logger.Info("已验证远端身份", "peer", id)
	return RemoteIdentity{
		PeerID:    id,
		PublicKey: pub,
		Static:    append([]byte{}, remoteStatic...),
	}, nil
}
