package tcpip

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostToNetwork16(t *testing.T) {
	for _, v := range []uint16{0, 1, 0x00ff, 0x1234, 0xabcd, 0xffff} {
		n := HostToNetwork16(v)

		// Storing the converted value in host order must yield the
		// big-endian encoding of the original value.
		var got [2]byte
		binary.NativeEndian.PutUint16(got[:], n)
		var want [2]byte
		binary.BigEndian.PutUint16(want[:], v)
		assert.Equal(t, want, got, "value 0x%04x", v)

		assert.Equal(t, v, NetworkToHost16(n), "round trip 0x%04x", v)
	}
}
