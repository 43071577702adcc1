package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestNoiseHandshakePayload_WireFormat(t *testing.T) {
	p := &NoiseHandshakePayload{
		IdentityKey: []byte{0xAA, 0xBB},
		IdentitySig: []byte{0x01},
	}

	data, err := p.Marshal()
	require.NoError(t, err)

	// tag(1,bytes)=0x0a len=2 | tag(2,bytes)=0x12 len=1，extensions 未设置不输出
	assert.Equal(t, []byte{0x0a, 0x02, 0xAA, 0xBB, 0x12, 0x01, 0x01}, data)
}

func TestNoiseHandshakePayload_Extensions(t *testing.T) {
	p := &NoiseHandshakePayload{
		IdentityKey: []byte("key"),
		IdentitySig: []byte("sig"),
		Extensions:  []byte{},
	}

	data, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x22, 0x00}, data[len(data)-2:], "空扩展也要保留字段存在性")

	var got NoiseHandshakePayload
	require.NoError(t, got.Unmarshal(data))
	assert.NotNil(t, got.Extensions)
	assert.Empty(t, got.Extensions)
	assert.Equal(t, []byte("key"), got.IdentityKey)
	assert.Equal(t, []byte("sig"), got.IdentitySig)
}

func TestNoiseHandshakePayload_SkipsUnknownFields(t *testing.T) {
	var data []byte
	data = protowire.AppendTag(data, 3, protowire.VarintType)
	data = protowire.AppendVarint(data, 300)
	data = protowire.AppendTag(data, fieldIdentitySig, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("sig"))
	data = protowire.AppendTag(data, 9, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("future"))

	var got NoiseHandshakePayload
	require.NoError(t, got.Unmarshal(data))
	assert.Nil(t, got.IdentityKey)
	assert.Equal(t, []byte("sig"), got.IdentitySig)
}

func TestNoiseHandshakePayload_Invalid(t *testing.T) {
	t.Run("截断的长度", func(t *testing.T) {
		var got NoiseHandshakePayload
		err := got.Unmarshal([]byte{0x0a, 0x05, 0x01})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("已知字段类型错误", func(t *testing.T) {
		var data []byte
		data = protowire.AppendTag(data, fieldIdentityKey, protowire.VarintType)
		data = protowire.AppendVarint(data, 1)

		var got NoiseHandshakePayload
		err := got.Unmarshal(data)
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("Unmarshal 复制数据", func(t *testing.T) {
		data := []byte{0x0a, 0x01, 0x07}
		var got NoiseHandshakePayload
		require.NoError(t, got.Unmarshal(data))
		data[2] = 0x08
		assert.Equal(t, []byte{0x07}, got.IdentityKey)
	})
}
