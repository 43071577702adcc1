package multistream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocol_Encode(t *testing.T) {
	assert.Equal(t, append([]byte{19}, "/multistream/1.0.0\n"...), Multistream.Encode())
	assert.Equal(t, append([]byte{7}, "/noise\n"...), Noise.Encode())
	assert.Equal(t, append([]byte{13}, "/yamux/1.0.0\n"...), Yamux.Encode())
	assert.Equal(t, append([]byte{3}, "na\n"...), NotAvailable.Encode())
}

func TestProtocol_String(t *testing.T) {
	assert.Equal(t, "/multistream/1.0.0", Multistream.String())
	assert.Equal(t, "/noise", Noise.String())
	assert.Equal(t, "/yamux/1.0.0", Yamux.String())
	assert.Equal(t, "na", NotAvailable.String())
	assert.Equal(t, "na", Protocol(42).String())
}

func TestDecode_KnownProtocols(t *testing.T) {
	for _, p := range []Protocol{Multistream, Noise, Yamux, NotAvailable} {
		got, err := Decode(p.Encode())
		require.NoError(t, err, p.String())
		assert.Equal(t, p, got)
	}
}

func TestDecode_UnknownIsNotAvailable(t *testing.T) {
	for _, name := range []string{"/unknown/1.0.0\n", "unsupported", ""} {
		got, err := Decode(EncodeBytes([]byte(name)))
		require.NoError(t, err, "格式正确的未知协议不是错误: %q", name)
		assert.Equal(t, NotAvailable, got)
	}
}

func TestDecode_InvalidEncoding(t *testing.T) {
	valid := Noise.Encode()

	tests := []struct {
		name    string
		encoded []byte
	}{
		{"空输入", nil},
		{"多一个字节", append(append([]byte{}, valid...), 'x')},
		{"少一个字节", valid[:len(valid)-1]},
		{"未编码的名字", []byte("invalid")},
		{"非最小 varint", []byte{0x80, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.encoded)
			assert.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestReadProtocol(t *testing.T) {
	t.Run("只读一个标识", func(t *testing.T) {
		stream := bytes.NewReader(append(Multistream.Encode(), Noise.Encode()...))

		first, err := ReadProtocol(stream)
		require.NoError(t, err)
		assert.Equal(t, Multistream.Encode(), first)

		second, err := ReadProtocol(stream)
		require.NoError(t, err)
		assert.Equal(t, Noise.Encode(), second)

		_, err = ReadProtocol(stream)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("名字被截断", func(t *testing.T) {
		encoded := Yamux.Encode()
		_, err := ReadProtocol(bytes.NewReader(encoded[:5]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("声明长度过大", func(t *testing.T) {
		huge := EncodeBytes(make([]byte, MaxProtocolLength+1))
		_, err := ReadProtocol(bytes.NewReader(huge))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("非最小 varint", func(t *testing.T) {
		_, err := ReadProtocol(bytes.NewReader([]byte{0x87, 0x00}))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}
