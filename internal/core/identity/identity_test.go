package identity

import (
	"testing"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	assert.Equal(t, crypto.Ed25519, id.PublicKey().Type())

	want, err := peer.IDFromPublicKey(id.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, want, id.PeerID())

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, id.PeerID(), other.PeerID(), "每次生成的身份应不同")
}

func TestFromPrivateKey_Nil(t *testing.T) {
	_, err := FromPrivateKey(nil)
	assert.ErrorIs(t, err, ErrNilPrivateKey)
}

func TestSignVerify(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	encoded, err := id.MarshalPublicKey()
	require.NoError(t, err)

	msg := []byte("noise-libp2p-static-key:0123456789abcdef")
	sig, err := id.Sign(msg)
	require.NoError(t, err)

	t.Run("有效签名", func(t *testing.T) {
		remote, pub, err := Verify(encoded, msg, sig)
		require.NoError(t, err)
		assert.Equal(t, id.PeerID(), remote)
		assert.True(t, pub.Equals(id.PublicKey()))
	})

	t.Run("篡改签名", func(t *testing.T) {
		bad := append([]byte{}, sig...)
		bad[0] ^= 0x01
		_, _, err := Verify(encoded, msg, bad)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("篡改消息", func(t *testing.T) {
		_, _, err := Verify(encoded, append(msg, '!'), sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("无效公钥", func(t *testing.T) {
		_, _, err := Verify([]byte{0x08, 0x01, 0x12}, msg, sig)
		assert.ErrorIs(t, err, ErrInvalidPublicKey)
	})

	t.Run("他人公钥", func(t *testing.T) {
		other, err := Generate()
		require.NoError(t, err)
		otherKey, err := other.MarshalPublicKey()
		require.NoError(t, err)

		_, _, err = Verify(otherKey, msg, sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
