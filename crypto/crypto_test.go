package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncryptBlock(t *testing.T) {
	key := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	pt := mustHex(t, "00112233445566778899aabbccddeeff")
	want := mustHex(t, "69c4e0d86a7b0430d8cdb78070b4c55a")

	got := EncryptBlock(key, pt)
	assert.Equal(t, want, got)
	assert.Equal(t, pt, DecryptBlock(key, got))
}

func TestBlockPreconditions(t *testing.T) {
	key := make([]byte, KeySize)
	assert.Panics(t, func() { EncryptBlock(key, make([]byte, 15)) })
	assert.Panics(t, func() { DecryptBlock(key, make([]byte, 17)) })
	assert.Panics(t, func() { EncryptBlock(make([]byte, 24), make([]byte, BlockSize)) })
	assert.Panics(t, func() { EncryptCBC(key, make([]byte, 8), nil) })
	assert.Panics(t, func() { CTR(key, make([]byte, BlockSize), nil) })
}

func TestPad(t *testing.T) {
	tests := []struct {
		name      string
		m         []byte
		blockSize int
		want      []byte
	}{
		{"Partial", []byte("YELLOW SUBMARINE"), 20, []byte("YELLOW SUBMARINE\x04\x04\x04\x04")},
		{"OneByte", []byte{0, 0}, 3, []byte{0, 0, 1}},
		{"Aligned", []byte{0, 0, 0}, 3, []byte{0, 0, 0, 3, 3, 3}},
		{"Empty", nil, 4, []byte{4, 4, 4, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pad(tt.m, tt.blockSize))
		})
	}
}

func TestUnpad(t *testing.T) {
	tests := []struct {
		name    string
		m       []byte
		want    []byte
		wantErr bool
	}{
		{"Valid", []byte("ICE ICE BABY\x04\x04\x04\x04"), []byte("ICE ICE BABY"), false},
		{"WrongValue", []byte("ICE ICE BABY\x05\x05\x05\x05"), nil, true},
		{"Mixed", []byte("ICE ICE BABY\x01\x02\x03\x04"), nil, true},
		{"Zero", []byte("ICE ICE BABY\x00"), nil, true},
		{"TooLong", []byte{3, 3}, nil, true},
		{"Empty", nil, nil, true},
		{"WholeBuffer", []byte{2, 2}, []byte{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unpad(tt.m)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPad)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPadRoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		for l := 0; l < 3*n; l++ {
			m := bytes.Repeat([]byte{byte(l)}, l)
			got, err := Unpad(Pad(m, n))
			require.NoError(t, err)
			require.Equal(t, m, got, "block size %d, length %d", n, l)
		}
	}
}

func TestECB(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	pt := mustHex(t, "6bc1bee22e409f96e93d7e117393172a")

	ct := EncryptECB(key, pt)
	require.Len(t, ct, 2*BlockSize)
	assert.Equal(t, mustHex(t, "3ad77bb40d7a3660a89ecaf32466ef97"), ct[:BlockSize])

	got, err := DecryptECB(key, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, got)

	_, err = DecryptECB(key, ct[:BlockSize+1])
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestECBRepeatsBlocks(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	ct := EncryptECB(key, make([]byte, 48))
	assert.Equal(t, ct[16:32], ct[32:48])
	assert.Equal(t, ct[0:16], ct[16:32])
}

func TestCBC(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	pt := mustHex(t, "6bc1bee22e409f96e93d7e117393172aae2d8a571e03ac9c9eb76fac45af8e51")

	ct := EncryptCBC(key, iv, pt)
	require.Len(t, ct, 3*BlockSize)
	assert.Equal(t, mustHex(t, "7649abac8119b246cee98e9b12e9197d5086cb9b507219ee95db113a917678b2"), ct[:2*BlockSize])

	got, err := DecryptCBC(key, iv, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, got)
}

func TestCBCBitFlipPropagation(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	iv, err := RandomBytes(BlockSize)
	require.NoError(t, err)
	pt := bytes.Repeat([]byte("A"), 3*BlockSize)

	ct := EncryptCBC(key, iv, pt)
	ct[BlockSize+3] ^= 0x01
	m, err := decryptCBC(key, iv, ct)
	require.NoError(t, err)

	assert.NotEqual(t, pt[BlockSize:2*BlockSize], m[BlockSize:2*BlockSize])
	want := append([]byte{}, pt[2*BlockSize:]...)
	want[3] ^= 0x01
	assert.Equal(t, want, m[2*BlockSize:3*BlockSize])
}

func TestCBCRejectsBadPadding(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	iv := make([]byte, BlockSize)
	ct := EncryptCBC(key, iv, []byte("YELLOW SUBMARINE"))
	// Flipping the last byte of the first block turns the pad 0x10 into 0x11.
	ct[BlockSize-1] ^= 0x01
	_, err = DecryptCBC(key, iv, ct)
	assert.ErrorIs(t, err, ErrInvalidPad)

	_, err = DecryptCBC(key, iv, nil)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestModesRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	iv, err := RandomBytes(BlockSize)
	require.NoError(t, err)
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	for l := 0; l < 5*BlockSize; l++ {
		pt, err := RandomBytes(l)
		require.NoError(t, err)

		got, err := DecryptECB(key, EncryptECB(key, pt))
		require.NoError(t, err)
		require.Equal(t, pt, got)

		got, err = DecryptCBC(key, iv, EncryptCBC(key, iv, pt))
		require.NoError(t, err)
		require.Equal(t, pt, got)

		ct := EncryptCTR(key, nonce, pt)
		require.Len(t, ct, l)
		require.Equal(t, pt, DecryptCTR(key, nonce, ct))
	}
}

func TestCTR(t *testing.T) {
	ct, err := base64.StdEncoding.DecodeString("L77na/nrFsKvynd6HzOoG7GHTLXsTVu9qvY/2syLXzhPweyyMTJULu/6/kXX0KSvoOLSFQ==")
	require.NoError(t, err)
	got := DecryptCTR([]byte("YELLOW SUBMARINE"), make([]byte, NonceSize), ct)
	assert.Equal(t, "Yo, VIP Let's kick it Ice, Ice, baby Ice, Ice, baby ", string(got))
}

func TestKeyStreamCTR(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	full := KeyStreamCTR(key, nonce, 0, 70)
	for _, off := range []int{0, 1, 15, 16, 17, 40} {
		assert.Equal(t, full[off:off+20], KeyStreamCTR(key, nonce, off, 20), "offset %d", off)
	}
}

func TestEditCTR(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	pt := []byte("Rollin' in my 5.0 with my rag-top down")
	ct := EncryptCTR(key, nonce, pt)

	edited, err := EditCTR(key, nonce, ct, 14, []byte("6.1"))
	require.NoError(t, err)
	assert.Equal(t, "Rollin' in my 6.1 with my rag-top down", string(DecryptCTR(key, nonce, edited)))
	assert.Equal(t, pt, DecryptCTR(key, nonce, ct), "input must not be modified")

	_, err = EditCTR(key, nonce, ct, len(ct)-1, []byte("xx"))
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = EditCTR(key, nonce, ct, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestBlocks(t *testing.T) {
	assert.Nil(t, Blocks([]byte{1, 2}, 3))
	assert.Equal(t, [][]byte{{1, 2}, {3, 4}}, Blocks([]byte{1, 2, 3, 4, 5}, 2))
	assert.PanicsWithValue(t, "crypto: invalid block size", func() { Blocks([]byte("abc"), 0) })
	assert.PanicsWithValue(t, "crypto: invalid block size", func() { Blocks([]byte("abc"), -1) })
}

func TestBlockXOR(t *testing.T) {
	assert.Equal(t, []byte{1, 1, 3, 3}, BlockXOR([]byte{0, 1, 2, 3}, []byte{1, 0}))
}
