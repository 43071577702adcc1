// Package noise 包含 Noise 握手 payload 的 protobuf 定义
//
// 对应 libp2p-noise 规范中的消息：
//
//	message NoiseHandshakePayload {
//	    optional bytes identity_key = 1;
//	    optional bytes identity_sig = 2;
//	    optional bytes extensions   = 4;
//	}
//
// extensions 在规范中是一个子消息；子消息与 bytes 的线上编码相同，
// 这里按不透明字节处理。
package noise

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidPayload 表示无效的 payload 数据
var ErrInvalidPayload = errors.New("invalid noise payload data")

const (
	fieldIdentityKey protowire.Number = 1
	fieldIdentitySig protowire.Number = 2
	fieldExtensions  protowire.Number = 4
)

// NoiseHandshakePayload 是 Noise 握手的 payload 结构
//
// nil 字段表示未设置，编码时省略。
type NoiseHandshakePayload struct {
	// IdentityKey protobuf 编码的身份公钥
	IdentityKey []byte
	// IdentitySig 对 "noise-libp2p-static-key:" + Noise 静态公钥 的签名
	IdentitySig []byte
	// Extensions 可选扩展数据
	Extensions []byte
}

// Marshal 序列化为 protobuf wire format
func (p *NoiseHandshakePayload) Marshal() ([]byte, error) {
	size := 0
	for _, f := range [][]byte{p.IdentityKey, p.IdentitySig, p.Extensions} {
		if f != nil {
			size += 1 + protowire.SizeBytes(len(f))
		}
	}

	out := make([]byte, 0, size)
	out = appendField(out, fieldIdentityKey, p.IdentityKey)
	out = appendField(out, fieldIdentitySig, p.IdentitySig)
	out = appendField(out, fieldExtensions, p.Extensions)
	return out, nil
}

func appendField(b []byte, num protowire.Number, v []byte) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// Unmarshal 反序列化
//
// 未知字段按其线上类型跳过（向前兼容）；已知字段的线上类型必须是 bytes。
func (p *NoiseHandshakePayload) Unmarshal(data []byte) error {
	*p = NoiseHandshakePayload{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		data = data[n:]

		var dst *[]byte
		switch num {
		case fieldIdentityKey:
			dst = &p.IdentityKey
		case fieldIdentitySig:
			dst = &p.IdentitySig
		case fieldExtensions:
			dst = &p.Extensions
		}

		if dst == nil {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrInvalidPayload, num, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		if typ != protowire.BytesType {
			return fmt.Errorf("%w: field %d has wire type %d", ErrInvalidPayload, num, typ)
		}
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrInvalidPayload, num, protowire.ParseError(n))
		}
		*dst = append([]byte{}, v...)
		data = data[n:]
	}

	return nil
}
