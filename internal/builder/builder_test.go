package builder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

func testFlow() tcpip.Quaternion {
	return tcpip.NewQuaternion(
		tcpip.MustParseIPv4EndPoint("192.168.1.106:4050"),
		tcpip.MustParseIPv4EndPoint("192.168.1.1:53"),
	)
}

func TestBuildUDP(t *testing.T) {
	b := New(WithIdentifiers(tcpip.NewIdentifierGenerator(10)))
	q := testFlow()
	payload := []byte("query")

	frame, err := b.BuildUDP(q, payload)
	require.NoError(t, err)
	require.Len(t, frame, 20+8+len(payload))

	ip := tcpip.IPHeaderFrom(frame)
	assert.True(t, ip.Valid())
	assert.Equal(t, uint16(len(frame)), ip.TotalLength())
	assert.Equal(t, uint16(10), ip.ID())
	assert.Equal(t, tcpip.ProtocolUDP, ip.Protocol())
	assert.Equal(t, q.Source.Address, ip.Source())
	assert.Equal(t, q.Destination.Address, ip.Destination())

	udp := tcpip.UDPHeaderFrom(tcpip.IPPayload(frame))
	assert.Equal(t, uint16(8+len(payload)), udp.Length())
	assert.Equal(t, q.Source.Port, udp.SourcePort())
	assert.Equal(t, q.Destination.Port, udp.DestinationPort())
	assert.True(t, tcpip.VerifyUDP(ip.Source(), ip.Destination(), tcpip.IPPayload(frame)))
	assert.Equal(t, payload, tcpip.UDPPayload(tcpip.IPPayload(frame)))

	second, err := b.BuildUDP(q, payload)
	require.NoError(t, err)
	ip2 := tcpip.IPHeaderFrom(second)
	assert.Equal(t, uint16(11), ip2.ID())
	assert.Equal(t, frame[20:], second[20:], "transport segment identical")
}

func TestBuildUDPTooLarge(t *testing.T) {
	b := New()
	_, err := b.BuildUDP(testFlow(), make([]byte, MaxUDPPayload+1))
	assert.True(t, errors.Is(err, core.ErrPayloadTooLarge), "got %v", err)

	frame, err := b.BuildUDP(testFlow(), make([]byte, MaxUDPPayload))
	require.NoError(t, err)
	ip := tcpip.IPHeaderFrom(frame)
	assert.Equal(t, uint16(65535), ip.TotalLength())
}

func TestBuildIP(t *testing.T) {
	b := New(WithIdentifiers(tcpip.NewIdentifierGenerator(1)))
	segment := bytes.Repeat([]byte{0xab}, 20)
	data := tcpip.IPData{
		Source:      tcpip.MustParseIPv4Address("10.0.0.1"),
		Destination: tcpip.MustParseIPv4Address("10.0.0.2"),
		Protocol:    tcpip.ProtocolTCP,
	}

	frame, err := b.BuildIP(data, segment)
	require.NoError(t, err)
	ip := tcpip.IPHeaderFrom(frame)
	assert.True(t, ip.Valid())
	assert.Equal(t, tcpip.ProtocolTCP, ip.Protocol())
	assert.Equal(t, uint16(40), ip.TotalLength())
	assert.Equal(t, segment, tcpip.IPPayload(frame))

	_, err = b.BuildIP(data, make([]byte, 65535))
	assert.ErrorIs(t, err, core.ErrPayloadTooLarge)
}

func TestRetarget(t *testing.T) {
	b := New(WithIdentifiers(tcpip.NewIdentifierGenerator(77)))
	q := testFlow()
	frame, err := b.BuildUDP(q, []byte("hello"))
	require.NoError(t, err)

	q2 := tcpip.NewQuaternion(q.Source, tcpip.MustParseIPv4EndPoint("8.8.8.8:53"))
	out, err := b.Retarget(frame, q2)
	require.NoError(t, err)

	orig := tcpip.IPHeaderFrom(frame)
	ip := tcpip.IPHeaderFrom(out)
	assert.True(t, ip.Valid())
	assert.Equal(t, orig.ID(), ip.ID(), "identification kept")
	assert.Equal(t, orig.TTL(), ip.TTL())
	assert.Equal(t, q2.Destination.Address, ip.Destination())
	assert.Equal(t, frame[:10], out[:10], "bytes before checksum")
	assert.Equal(t, frame[12:16], out[12:16], "source address")
	assert.True(t, tcpip.VerifyUDP(ip.Source(), ip.Destination(), tcpip.IPPayload(out)))

	// The original is untouched.
	assert.Equal(t, q.Destination.Address, orig.Destination())
	assert.True(t, tcpip.VerifyUDP(orig.Source(), orig.Destination(), tcpip.IPPayload(frame)))
}

func TestRetargetRejects(t *testing.T) {
	b := New()
	_, err := b.Retarget(make([]byte, 10), testFlow())
	assert.ErrorIs(t, err, core.ErrPacketTooShort)

	tcp, err := b.BuildIP(tcpip.IPData{Protocol: tcpip.ProtocolTCP}, make([]byte, 20))
	require.NoError(t, err)
	_, err = b.Retarget(tcp, testFlow())
	assert.ErrorIs(t, err, core.ErrUnsupportedProto)
}
