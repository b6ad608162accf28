package tcpip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPHeaderSet(t *testing.T) {
	src := IPv4AddressFrom(192, 168, 1, 106)
	dst := IPv4AddressFrom(192, 168, 1, 1)
	payload := []byte("hello, resolver")

	buf := make([]byte, UDPAllLength(uint16(len(payload))))
	copy(UDPPayload(buf), payload)

	var h UDPHeader
	h.Set(src, 4050, dst, 53, buf)

	assert.Equal(t, uint16(4050), h.SourcePort())
	assert.Equal(t, uint16(53), h.DestinationPort())
	assert.Equal(t, uint16(8+len(payload)), h.Length())
	assert.Equal(t, uint16(len(payload)), h.PayloadLength())
	assert.Equal(t, UDPHeaderFrom(buf), h, "header copy matches buffer")
	assert.Equal(t, payload, UDPPayload(buf), "payload untouched")

	// Wire layout.
	assert.Equal(t, []byte{0x0f, 0xd2, 0x00, 0x35}, buf[0:4])
	assert.Equal(t, []byte{0x00, byte(8 + len(payload))}, buf[4:6])

	// Recompute independently over pseudo-header ∥ segment with the
	// checksum field zeroed.
	seg := append([]byte(nil), buf...)
	seg[6], seg[7] = 0, 0
	ph := NewPseudoHeader(src, dst, ProtocolUDP, uint16(len(seg)))
	assert.Equal(t, neverZero(ph.TransportChecksum(seg)), h.Checksum())

	assert.True(t, VerifyUDP(src, dst, buf))
	assert.False(t, VerifyUDP(src, IPv4AddressFrom(192, 168, 1, 2), buf), "wrong destination")
}

func TestUDPHeaderSetEmptyPayload(t *testing.T) {
	buf := make([]byte, UDPHeaderLen)
	h := SetUDP(NewQuaternion(MustParseIPv4EndPoint("1.2.3.4:1"), MustParseIPv4EndPoint("5.6.7.8:2")), buf)
	assert.Equal(t, uint16(UDPHeaderLen), h.Length())
	assert.Empty(t, UDPPayload(buf))
	assert.True(t, VerifyUDP(MustParseIPv4Address("1.2.3.4"), MustParseIPv4Address("5.6.7.8"), buf))
}

func TestUDPHeaderSetIsIdempotent(t *testing.T) {
	q := NewQuaternion(MustParseIPv4EndPoint("10.0.0.1:5000"), MustParseIPv4EndPoint("10.0.0.2:6000"))
	buf := make([]byte, 8+5)
	copy(buf[8:], "abcde")
	first := SetUDP(q, buf)
	second := SetUDP(q, buf)
	assert.Equal(t, first, second)
}

func TestUDPHeaderSetShortBufferPanics(t *testing.T) {
	var h UDPHeader
	buf := make([]byte, 7)
	require.Panics(t, func() {
		h.Set(IPv4Address{}, 1, IPv4Address{}, 2, buf)
	})
	assert.Equal(t, make([]byte, 7), buf, "nothing written before the panic")
}

func TestUDPHeaderSetZeroChecksumSentAsOnes(t *testing.T) {
	var zero IPv4Address
	buf := make([]byte, UDPAllLength(2))
	copy(UDPPayload(buf), []byte{0xff, 0xd7})

	var h UDPHeader
	h.Set(zero, 1, zero, 2, buf)

	ph := NewPseudoHeader(zero, zero, ProtocolUDP, uint16(len(buf)))
	buf[6], buf[7] = 0, 0
	require.Equal(t, uint16(0), ph.TransportChecksum(buf), "checksum computes to zero")

	assert.Equal(t, uint16(0xffff), h.Checksum())
	copy(buf, h[:])
	assert.Equal(t, []byte{0xff, 0xff}, buf[6:8])
	assert.True(t, VerifyUDP(zero, zero, buf))
}

func TestVerifyUDP(t *testing.T) {
	src, dst := MustParseIPv4Address("1.1.1.1"), MustParseIPv4Address("2.2.2.2")
	assert.False(t, VerifyUDP(src, dst, []byte{1, 2, 3}))

	noSum := []byte{0, 1, 0, 2, 0, 8, 0, 0}
	assert.True(t, VerifyUDP(src, dst, noSum), "zero checksum means none")

	buf := make([]byte, 12)
	SetUDP(NewQuaternion(EndPoint(src, 1), EndPoint(dst, 2)), buf)
	buf[10] ^= 0xff
	assert.False(t, VerifyUDP(src, dst, buf), "corrupt payload")
}
