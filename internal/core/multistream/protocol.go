package multistream

import (
	"errors"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
)

// MaxProtocolLength 单个协议标识的最大长度
const MaxProtocolLength = 1024

var (
	nameMultistream  = []byte("/multistream/1.0.0\n")
	nameNoise        = []byte("/noise\n")
	nameYamux        = []byte("/yamux/1.0.0\n")
	nameNotAvailable = []byte("na\n")
)

// Protocol 握手过程中会协商的协议
type Protocol int

const (
	// NotAvailable 对端提议了无法识别的协议
	NotAvailable Protocol = iota
	// Multistream multistream-select 头
	Multistream
	// Noise libp2p-noise 安全通道
	Noise
	// Yamux yamux 流多路复用
	Yamux
)

// Name 返回协议名字节（以 '\n' 结尾）
func (p Protocol) Name() []byte {
	switch p {
	case Multistream:
		return nameMultistream
	case Noise:
		return nameNoise
	case Yamux:
		return nameYamux
	default:
		return nameNotAvailable
	}
}

// String 返回去掉换行的协议名
func (p Protocol) String() string {
	name := p.Name()
	return string(name[:len(name)-1])
}

// Encode 编码协议标识
func (p Protocol) Encode() []byte {
	return EncodeBytes(p.Name())
}

// EncodeBytes 编码任意协议名
func EncodeBytes(name []byte) []byte {
	prefix := varint.ToUvarint(uint64(len(name)))
	out := make([]byte, 0, len(prefix)+len(name))
	out = append(out, prefix...)
	return append(out, name...)
}

// Decode 解码协议标识
//
// varint 非法或声明长度与剩余字节数不等时返回 ErrInvalidEncoding；
// 格式正确但无法识别的协议名返回 NotAvailable，不视为错误。
func Decode(encoded []byte) (Protocol, error) {
	length, n, err := varint.FromUvarint(encoded)
	if err != nil {
		return NotAvailable, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}

	name := encoded[n:]
	if length != uint64(len(name)) {
		return NotAvailable, fmt.Errorf("%w: declared %d bytes, got %d", ErrInvalidEncoding, length, len(name))
	}

	for _, p := range []Protocol{Multistream, Noise, Yamux, NotAvailable} {
		if string(name) == string(p.Name()) {
			return p, nil
		}
	}
	return NotAvailable, nil
}

// ReadProtocol 从流中恰好读取一个编码后的协议标识
//
// 逐字节读取 varint，不会多读属于后续消息的字节。
// 声明长度超过 MaxProtocolLength 时返回 ErrInvalidEncoding。
func ReadProtocol(r io.Reader) ([]byte, error) {
	length, err := varint.ReadUvarint(&byteReader{r: r})
	if err != nil {
		if errors.Is(err, varint.ErrOverflow) || errors.Is(err, varint.ErrNotMinimal) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
		}
		return nil, fmt.Errorf("read protocol length: %w", err)
	}
	if length > MaxProtocolLength {
		return nil, fmt.Errorf("%w: protocol name of %d bytes", ErrInvalidEncoding, length)
	}

	prefix := varint.ToUvarint(length)
	encoded := make([]byte, len(prefix)+int(length))
	copy(encoded, prefix)
	if _, err := io.ReadFull(r, encoded[len(prefix):]); err != nil {
		return nil, fmt.Errorf("read protocol name: %w", err)
	}
	return encoded, nil
}

// byteReader 把 io.Reader 适配为 io.ByteReader，不做预读
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}
