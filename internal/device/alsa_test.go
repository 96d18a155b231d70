package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt16ByteRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 1234, -4321}
	buf := make([]byte, len(samples)*2)

	n := int16ToBytes(samples, buf)
	assert.Equal(t, len(buf), n)

	out := make([]int16, len(samples))
	got := bytesToInt16(buf, out)
	assert.Equal(t, len(samples), got)
	assert.Equal(t, samples, out)
}

func TestBytesToInt16TruncatesToDestinationCapacity(t *testing.T) {
	buf := make([]byte, 8) // 4 samples worth
	dst := make([]int16, 2)

	n := bytesToInt16(buf, dst)
	assert.Equal(t, 2, n)
}

func TestInt16ToBytesTruncatesToDestinationCapacity(t *testing.T) {
	samples := []int16{1, 2, 3, 4}
	dst := make([]byte, 4) // room for 2 samples

	n := int16ToBytes(samples, dst)
	assert.Equal(t, 4, n)
}
