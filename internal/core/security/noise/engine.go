package noise

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"slices"

	"github.com/flynn/noise"
)

// Pattern 握手模式标识（固定，不可配置）
const Pattern = "Noise_XX_25519_ChaChaPoly_SHA256"

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// ============================================================================
//                              缓冲区
// ============================================================================

// Buffer 单条连接独占的三块缓冲区：明文读、明文写、密文
//
// 三块缓冲区互不别名，也从不在连接之间共享。
type Buffer struct {
	read      []byte
	write     []byte
	encrypted []byte
}

// Plaintext 返回最近一次解密得到的明文
func (b *Buffer) Plaintext() []byte {
	return b.read
}

// Pending 返回待加密的明文
func (b *Buffer) Pending() []byte {
	return b.write
}

// Encrypted 返回密文缓冲区
func (b *Buffer) Encrypted() []byte {
	return b.encrypted
}

// SetWrite 把 p 复制到明文写缓冲区
func (b *Buffer) SetWrite(p []byte) {
	b.write = append(b.write[:0], p...)
}

// SetEncrypted 把 p 复制到密文缓冲区
func (b *Buffer) SetEncrypted(p []byte) {
	b.encrypted = append(b.encrypted[:0], p...)
}

// ReadFrame 从 r 读取一帧到密文缓冲区
func (b *Buffer) ReadFrame(r io.Reader) error {
	frame, err := ReadFrame(r, b.encrypted)
	if err != nil {
		return err
	}
	b.encrypted = frame
	return nil
}

// ============================================================================
//                              Session
// ============================================================================

// Session 握手阶段与传输阶段共享的能力
type Session interface {
	// Encrypt 加密写缓冲区，结果放入密文缓冲区并返回
	Encrypt() ([]byte, error)

	// Decrypt 解密密文缓冲区，结果放入读缓冲区并返回
	Decrypt() ([]byte, error)

	// RemoteStatic 远端 Noise 静态公钥，尚未获知时返回 nil
	RemoteStatic() []byte

	// LocalStatic 本地 Noise 静态公钥
	LocalStatic() []byte

	// Buffer 返回该 Session 独占的缓冲区
	Buffer() *Buffer
}

var (
	_ Session = (*Handshake)(nil)
	_ Session = (*Transport)(nil)
)

// SendMessage 加密 plaintext 并作为一帧发送
//
// 返回写入的密文字节数。
func SendMessage(w io.Writer, s Session, plaintext []byte) (int, error) {
	s.Buffer().SetWrite(plaintext)
	encrypted, err := s.Encrypt()
	if err != nil {
		return 0, err
	}
	return WriteFrame(w, encrypted)
}

// RecvMessage 读取一帧并解密
//
// 返回的明文指向 Session 的读缓冲区，下一次 Decrypt 之前有效。
func RecvMessage(r io.Reader, s Session) ([]byte, error) {
	if err := s.Buffer().ReadFrame(r); err != nil {
		return nil, err
	}
	return s.Decrypt()
}

// ============================================================================
//                              握手阶段
// ============================================================================

// Handshake 握手阶段的 Noise 状态
type Handshake struct {
	hs        *noise.HandshakeState
	buf       Buffer
	keypair   noise.DHKey
	initiator bool

	// 第三条消息处理完后由底层原语给出
	send *noise.CipherState
	recv *noise.CipherState
}

// NewInitiator 创建发起方（先发送第一条消息）握手状态
func NewInitiator() (*Handshake, error) {
	return newHandshake(true)
}

// NewResponder 创建响应方握手状态
func NewResponder() (*Handshake, error) {
	return newHandshake(false)
}

func newHandshake(initiator bool) (*Handshake, error) {
	keypair, err := cipherSuite.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: generate static keypair: %w", ErrCrypto, err)
	}

	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: keypair,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create handshake state: %w", ErrCrypto, err)
	}

	return &Handshake{
		hs:        hs,
		keypair:   keypair,
		initiator: initiator,
	}, nil
}

// Initiator 是否为发起方
func (h *Handshake) Initiator() bool {
	return h.initiator
}

// Buffer 返回握手阶段的缓冲区
func (h *Handshake) Buffer() *Buffer {
	return &h.buf
}

// LocalStatic 返回本地 Noise 静态公钥
func (h *Handshake) LocalStatic() []byte {
	return h.keypair.Public
}

// RemoteStatic 返回远端 Noise 静态公钥
//
// 发起方在收到第二条消息后获知，响应方在收到第三条消息后获知。
func (h *Handshake) RemoteStatic() []byte {
	if h.hs == nil {
		return nil
	}
	return h.hs.PeerStatic()
}

// Complete 三条消息是否已交换完毕
func (h *Handshake) Complete() bool {
	return h.send != nil && h.recv != nil
}

// Encrypt 写出下一条握手消息，写缓冲区内容作为 payload
func (h *Handshake) Encrypt() ([]byte, error) {
	if h.hs == nil {
		return nil, ErrSessionConsumed
	}

	out := slices.Grow(h.buf.encrypted[:0], len(h.buf.write)+EncryptionInflation)
	msg, cs1, cs2, err := h.hs.WriteMessage(out, h.buf.write)
	if err != nil {
		return nil, fmt.Errorf("%w: write handshake message: %w", ErrCrypto, err)
	}
	h.buf.encrypted = msg
	h.split(cs1, cs2)
	return msg, nil
}

// Decrypt 读入密文缓冲区中的握手消息，返回其中的 payload
func (h *Handshake) Decrypt() ([]byte, error) {
	if h.hs == nil {
		return nil, ErrSessionConsumed
	}

	out := slices.Grow(h.buf.read[:0], len(h.buf.encrypted))
	payload, cs1, cs2, err := h.hs.ReadMessage(out, h.buf.encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: read handshake message: %w", ErrCrypto, err)
	}
	h.buf.read = payload
	h.split(cs1, cs2)
	return payload, nil
}

// split 记录握手结束时给出的两个 CipherState
//
// cs1 用于发起方到响应方方向，cs2 用于反方向。
func (h *Handshake) split(cs1, cs2 *noise.CipherState) {
	if cs1 == nil || cs2 == nil {
		return
	}
	if h.initiator {
		h.send, h.recv = cs1, cs2
	} else {
		h.send, h.recv = cs2, cs1
	}
}

// IntoTransport 把握手阶段转换为传输阶段
//
// 只有三条 XX 消息都交换完毕后才有效，否则返回 ErrHandshakeIncomplete
// 且握手对象保持可用。成功后握手对象被消耗，缓冲区所有权转移给 Transport。
func (h *Handshake) IntoTransport() (*Transport, error) {
	if h.hs == nil {
		return nil, ErrSessionConsumed
	}
	if !h.Complete() {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, ErrHandshakeIncomplete)
	}

	t := &Transport{
		send:    h.send,
		recv:    h.recv,
		buf:     h.buf,
		keypair: h.keypair,
		remote:  bytes.Clone(h.hs.PeerStatic()),
	}
	*h = Handshake{initiator: h.initiator}
	return t, nil
}

// ============================================================================
//                              传输阶段
// ============================================================================

// Transport 传输阶段的 Noise 状态
type Transport struct {
	send    *noise.CipherState
	recv    *noise.CipherState
	buf     Buffer
	keypair noise.DHKey
	remote  []byte
}

// Buffer 返回传输阶段的缓冲区
func (t *Transport) Buffer() *Buffer {
	return &t.buf
}

// LocalStatic 返回本地 Noise 静态公钥
func (t *Transport) LocalStatic() []byte {
	return t.keypair.Public
}

// RemoteStatic 返回远端 Noise 静态公钥
func (t *Transport) RemoteStatic() []byte {
	return t.remote
}

// Encrypt 加密写缓冲区
func (t *Transport) Encrypt() ([]byte, error) {
	out := slices.Grow(t.buf.encrypted[:0], len(t.buf.write)+EncryptionInflation)
	ct, err := t.send.Encrypt(out, nil, t.buf.write)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt: %w", ErrCrypto, err)
	}
	t.buf.encrypted = ct
	return ct, nil
}

// Decrypt 解密密文缓冲区
func (t *Transport) Decrypt() ([]byte, error) {
	out := slices.Grow(t.buf.read[:0], len(t.buf.encrypted))
	pt, err := t.recv.Decrypt(out, nil, t.buf.encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt: %w", ErrCrypto, err)
	}
	t.buf.read = pt
	return pt, nil
}
