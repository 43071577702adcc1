package noise

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

const (
	// MaxFrameSize 单帧最大长度
	MaxFrameSize = 65536

	// EncryptionInflation 为加密膨胀预留的空间
	EncryptionInflation = 1024

	// MaxPayloadSize 单帧可携带的最大 payload
	MaxPayloadSize = MaxFrameSize - EncryptionInflation

	frameHeaderSize = 2
)

// ReadFrame 读取一帧（2 字节大端长度 + 数据）
//
// 数据读入 buf（按需扩容后复用），返回长度为帧长的切片。
// 长度超过 MaxFrameSize 时在读取帧体之前返回 ErrFrameSizeExceeded。
// MaxFrameSize 大于 u16 能表示的最大值，因此该检查只与发送侧对称，
// 对任何 2 字节长度头都不会触发。
func ReadFrame(r io.Reader, buf []byte) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	n := int(binary.BigEndian.Uint16(hdr[:]))
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: frame declares %d bytes", ErrFrameSizeExceeded, n)
	}

	buf = slices.Grow(buf[:0], n)[:n]
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return buf, nil
}

// WriteFrame 写入一帧（2 字节大端长度 + 数据）
//
// payload 超过 MaxPayloadSize 时不触碰 w，直接返回 ErrFrameSizeExceeded。
// 返回写入的 payload 字节数；是否一次性刷出取决于底层传输。
func WriteFrame(w io.Writer, payload []byte) (int, error) {
	if len(payload) > MaxPayloadSize {
		return 0, fmt.Errorf("%w: payload is %d bytes", ErrFrameSizeExceeded, len(payload))
	}

	var hdr [frameHeaderSize]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("write frame header: %w", err)
	}

	n, err := w.Write(payload)
	if err != nil {
		return n, fmt.Errorf("write frame body: %w", err)
	}
	return n, nil
}
