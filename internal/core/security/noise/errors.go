package noise

import "errors"

var (
	// ErrFrameSizeExceeded 帧或 payload 超过最大长度
	ErrFrameSizeExceeded = errors.New("noise: exceeded maximum frame size")

	// ErrCrypto 底层 Noise 原语返回的错误（模式构造、握手消息、加解密）
	ErrCrypto = errors.New("noise: crypto failure")

	// ErrHandshakeIncomplete 三条 XX 消息尚未交换完毕
	ErrHandshakeIncomplete = errors.New("noise: handshake not complete")

	// ErrSessionConsumed 握手阶段对象已转换为传输阶段
	ErrSessionConsumed = errors.New("noise: handshake session already consumed")

	// ErrMissingRemoteKey 尚未获知远端 Noise 静态公钥
	ErrMissingRemoteKey = errors.New("noise: missing remote static key")

	// ErrInvalidPublicKey 远端声明的身份公钥无法解码
	ErrInvalidPublicKey = errors.New("noise: invalid remote identity key")

	// ErrIdentityVerification 远端身份签名校验失败
	ErrIdentityVerification = errors.New("noise: could not verify remote peer identity")
)
