package identity

import "errors"

var (
	// ErrNilPrivateKey 私钥为 nil
	ErrNilPrivateKey = errors.New("identity: private key is nil")

	// ErrInvalidPublicKey 公钥无法解码
	ErrInvalidPublicKey = errors.New("identity: invalid public key")

	// ErrInvalidSignature 签名校验失败
	ErrInvalidSignature = errors.New("identity: invalid signature")
)
