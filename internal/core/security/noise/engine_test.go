package noise

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step 把 from 写出的一条消息交给 to 读入
func step(t *testing.T, from, to *Handshake, payload []byte) []byte {
	t.Helper()
	from.Buffer().SetWrite(payload)
	ct, err := from.Encrypt()
	require.NoError(t, err)
	to.Buffer().SetEncrypted(ct)
	pt, err := to.Decrypt()
	require.NoError(t, err)
	return pt
}

func TestPattern(t *testing.T) {
	assert.Equal(t, Pattern, "Noise_XX_"+string(cipherSuite.Name()))
}

func TestHandshake_New(t *testing.T) {
	ini, err := NewInitiator()
	require.NoError(t, err)
	rsp, err := NewResponder()
	require.NoError(t, err)

	assert.True(t, ini.Initiator())
	assert.False(t, rsp.Initiator())
	assert.Len(t, ini.LocalStatic(), 32)
	assert.Len(t, rsp.LocalStatic(), 32)
	assert.NotEqual(t, ini.LocalStatic(), rsp.LocalStatic())
	assert.Nil(t, ini.RemoteStatic(), "握手开始前不应知道远端静态公钥")
	assert.Nil(t, rsp.RemoteStatic())
}

func TestHandshake_XXInMemory(t *testing.T) {
	ini, err := NewInitiator()
	require.NoError(t, err)
	rsp, err := NewResponder()
	require.NoError(t, err)

	// -> e
	step(t, ini, rsp, nil)
	assert.Nil(t, ini.RemoteStatic())
	assert.Nil(t, rsp.RemoteStatic())

	_, err = ini.IntoTransport()
	assert.ErrorIs(t, err, ErrHandshakeIncomplete, "第一条消息后不能转换")
	assert.ErrorIs(t, err, ErrCrypto)

	// <- e, ee, s, es, payload
	got := step(t, rsp, ini, []byte("responder"))
	assert.Equal(t, []byte("responder"), got)
	assert.Equal(t, rsp.LocalStatic(), ini.RemoteStatic(), "发起方在第二条消息后获知远端静态公钥")
	assert.Nil(t, rsp.RemoteStatic())

	// -> s, se, payload
	got = step(t, ini, rsp, []byte("initiator"))
	assert.Equal(t, []byte("initiator"), got)
	assert.Equal(t, ini.LocalStatic(), rsp.RemoteStatic())
	assert.True(t, ini.Complete())
	assert.True(t, rsp.Complete())

	it, err := ini.IntoTransport()
	require.NoError(t, err)
	rt, err := rsp.IntoTransport()
	require.NoError(t, err)

	assert.Equal(t, rt.LocalStatic(), it.RemoteStatic())
	assert.Equal(t, it.LocalStatic(), rt.RemoteStatic())

	t.Run("握手对象已被消耗", func(t *testing.T) {
		_, err := ini.Encrypt()
		assert.ErrorIs(t, err, ErrSessionConsumed)
		_, err = ini.Decrypt()
		assert.ErrorIs(t, err, ErrSessionConsumed)
		_, err = ini.IntoTransport()
		assert.ErrorIs(t, err, ErrSessionConsumed)
		assert.Nil(t, ini.RemoteStatic())
	})

	t.Run("双向传输", func(t *testing.T) {
		for i, msg := range [][]byte{[]byte("ping"), {}, bytes.Repeat([]byte{0x42}, MaxPayloadSize)} {
			it.Buffer().SetWrite(msg)
			ct, err := it.Encrypt()
			require.NoError(t, err)
			assert.LessOrEqual(t, len(ct), len(msg)+EncryptionInflation)

			rt.Buffer().SetEncrypted(ct)
			pt, err := rt.Decrypt()
			require.NoError(t, err)
			assert.Equal(t, msg, pt, "message %d", i)
		}

		rt.Buffer().SetWrite([]byte("pong"))
		ct, err := rt.Encrypt()
		require.NoError(t, err)
		it.Buffer().SetEncrypted(ct)
		pt, err := it.Decrypt()
		require.NoError(t, err)
		assert.Equal(t, []byte("pong"), pt)
	})

	t.Run("比特翻转被拒绝", func(t *testing.T) {
		it.Buffer().SetWrite([]byte("/yamux/1.0.0\n"))
		ct, err := it.Encrypt()
		require.NoError(t, err)

		tampered := append([]byte{}, ct...)
		tampered[0] ^= 0x01
		rt.Buffer().SetEncrypted(tampered)
		_, err = rt.Decrypt()
		assert.ErrorIs(t, err, ErrCrypto)
	})
}

func TestHandshake_WrongTurn(t *testing.T) {
	rsp, err := NewResponder()
	require.NoError(t, err)

	_, err = rsp.Encrypt()
	assert.ErrorIs(t, err, ErrCrypto, "响应方不能先写")
}

func TestBuffer_NotAliased(t *testing.T) {
	h, err := NewInitiator()
	require.NoError(t, err)

	src := []byte("hello")
	h.Buffer().SetWrite(src)
	src[0] = 'j'
	assert.Equal(t, []byte("hello"), h.Buffer().Pending())

	ct, err := h.Encrypt()
	require.NoError(t, err)
	assert.Equal(t, ct, h.Buffer().Encrypted())

	other, err := NewInitiator()
	require.NoError(t, err)
	other.Buffer().SetWrite([]byte("other"))
	assert.Equal(t, []byte("hello"), h.Buffer().Pending(), "不同 Session 的缓冲区互相独立")
}
