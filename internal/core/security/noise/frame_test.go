package noise

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	sizes := []int{0, 1, 19, EncryptionInflation, MaxPayloadSize}

	for _, size := range sizes {
		payload := make([]byte, size)
		_, err := rand.Read(payload)
		require.NoError(t, err)

		var wire bytes.Buffer
		n, err := WriteFrame(&wire, payload)
		require.NoError(t, err)
		assert.Equal(t, size, n)
		assert.Equal(t, size+frameHeaderSize, wire.Len())
		assert.Equal(t, uint16(size), binary.BigEndian.Uint16(wire.Bytes()[:2]))

		got, err := ReadFrame(&wire, nil)
		require.NoError(t, err)
		assert.Equal(t, payload, got, "size=%d", size)
	}
}

func TestFrame_OversizedPayloadNotWritten(t *testing.T) {
	var wire bytes.Buffer
	n, err := WriteFrame(&wire, make([]byte, MaxPayloadSize+1))
	assert.ErrorIs(t, err, ErrFrameSizeExceeded)
	assert.Zero(t, n)
	assert.Zero(t, wire.Len(), "超长 payload 不应触碰底层连接")
}

func TestFrame_ReadErrors(t *testing.T) {
	t.Run("空连接", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(nil), nil)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("帧头不完整", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{0x01}), nil)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("帧体不完整", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{0xFF, 0xFF, 0x01, 0x02}), nil)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestFrame_ReusesBuffer(t *testing.T) {
	var wire bytes.Buffer
	_, err := WriteFrame(&wire, []byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 0, 64)
	got, err := ReadFrame(&wire, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Equal(t, &buf[:1][0], &got[0], "容量足够时应复用传入缓冲区")
}

// TestFrame_LargestHeaderAccepted 最大的 2 字节长度头总能读取
func TestFrame_LargestHeaderAccepted(t *testing.T) {
	require.Greater(t, MaxFrameSize, math.MaxUint16)

	body := make([]byte, math.MaxUint16)
	_, err := rand.Read(body)
	require.NoError(t, err)

	var wire bytes.Buffer
	require.NoError(t, binary.Write(&wire, binary.BigEndian, uint16(math.MaxUint16)))
	wire.Write(body)

	got, err := ReadFrame(&wire, nil)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}
