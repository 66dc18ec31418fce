package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const checkString = "123456789"

func TestCheckValues(t *testing.T) {
	assert.Equal(t, uint32(0x906E), Compute(X25, []byte(checkString)))
	assert.Equal(t, uint32(0xE3069283), Compute(Castagnoli, []byte(checkString)))
	assert.Equal(t, uint32(0), Compute(None, []byte(checkString)))
}

func TestWidths(t *testing.T) {
	assert.Equal(t, 0, None.Width())
	assert.Equal(t, 2, X25.Width())
	assert.Equal(t, 4, Castagnoli.Width())
}

func TestStreamingMatchesOneShot(t *testing.T) {
	data := []byte(checkString)
	for _, alg := range []Algorithm{X25, Castagnoli} {
		oneShot := Compute(alg, data)

		h := NewHash(alg)
		_, _ = h.Write(data[:3])
		_, _ = h.Write(data[3:])
		assert.Equal(t, oneShot, h.Sum32(), "alg=%v", alg)
	}
}

func TestBitFlipChangesValue(t *testing.T) {
	data := []byte(checkString)
	flipped := append([]byte(nil), data...)
	flipped[0] ^= 0x01

	assert.NotEqual(t, Compute(X25, data), Compute(X25, flipped))
	assert.NotEqual(t, Compute(Castagnoli, data), Compute(Castagnoli, flipped))
}

func TestBytesEncoding(t *testing.T) {
	h := NewHash(X25)
	_, _ = h.Write([]byte(checkString))
	assert.Equal(t, []byte{0x90, 0x6E}, h.Bytes())

	h32 := NewHash(Castagnoli)
	_, _ = h32.Write([]byte(checkString))
	assert.Equal(t, []byte{0xE3, 0x06, 0x92, 0x83}, h32.Bytes())

	hNone := NewHash(None)
	assert.Nil(t, hNone.Bytes())
}
