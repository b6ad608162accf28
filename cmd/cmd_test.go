package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktcraft/internal/builder"
	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/internal/sink/pcap"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

func TestRunChecksum(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runChecksum([]string{"0001f203f4f5f6f7"}, &buf))
	assert.Equal(t, "0x220d\n", buf.String())

	// Odd split points and blanks give the same result.
	buf.Reset()
	require.NoError(t, runChecksum([]string{"00 01 f2", "03f4f5", "f6 f7"}, &buf))
	assert.Equal(t, "0x220d\n", buf.String())
}

func TestRunChecksumBadHex(t *testing.T) {
	err := runChecksum([]string{"00", "xyz"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 2")
}

func TestRunUDPConsole(t *testing.T) {
	var buf bytes.Buffer
	err := runUDP(udpOptions{
		source:       "10.0.0.1:4000",
		destinations: []string{"10.0.0.2:53"},
		payload:      "hi",
		count:        1,
		output:       "-",
	}, config.Default(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "#1 IP UDP SRC=10.0.0.1 DST=10.0.0.2 LEN=30 TTL=128 ID=1")
}

func TestRunUDPIdentStartZero(t *testing.T) {
	c := config.Default()
	zero := uint16(0)
	c.Ident.Start = &zero

	var buf bytes.Buffer
	require.NoError(t, runUDP(udpOptions{
		source:       "10.0.0.1:4000",
		destinations: []string{"10.0.0.2:53"},
		count:        2,
		output:       "-",
	}, c, &buf))
	assert.Contains(t, buf.String(), "#1 IP UDP SRC=10.0.0.1 DST=10.0.0.2 LEN=28 TTL=128 ID=0")
	assert.Contains(t, buf.String(), "#2 IP UDP SRC=10.0.0.1 DST=10.0.0.2 LEN=28 TTL=128 ID=1")
}

func TestRunUDPErrors(t *testing.T) {
	c := config.Default()
	tests := []struct {
		name string
		opts udpOptions
	}{
		{"bad src", udpOptions{source: "nope", destinations: []string{"10.0.0.2:53"}, count: 1}},
		{"bad dst", udpOptions{source: "10.0.0.1:1", destinations: []string{"10.0.0.2"}, count: 1}},
		{"no src", udpOptions{destinations: []string{"10.0.0.2:53"}, count: 1}},
		{"zero count", udpOptions{source: "10.0.0.1:1", destinations: []string{"10.0.0.2:53"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, runUDP(tt.opts, c, &bytes.Buffer{}))
		})
	}
}

func TestRunUDPDefaultSource(t *testing.T) {
	c := config.Default()
	c.Defaults.Source = tcpip.MustParseIPv4EndPoint("192.168.7.7:7000")

	var buf bytes.Buffer
	require.NoError(t, runUDP(udpOptions{destinations: []string{"10.0.0.2:53"}, count: 1, output: "-"}, c, &buf))
	assert.Contains(t, buf.String(), "SRC=192.168.7.7")
}

func TestRunUDPThenInspect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "udp.pcap")
	err := runUDP(udpOptions{
		source:       "10.0.0.1:4000",
		destinations: []string{"10.0.0.2:53", "10.0.0.3:53"},
		payloadHex:   "deadbeef",
		count:        2,
		output:       out,
	}, config.Default(), &bytes.Buffer{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runInspect(out, inspectOptions{verbose: true}, &buf))
	assert.Contains(t, buf.String(), "#1 UDP 10.0.0.1:4000 10.0.0.2:53 ID=1")
	assert.Contains(t, buf.String(), "#4 UDP 10.0.0.1:4000 10.0.0.3:53 ID=2")
	assert.Contains(t, buf.String(), "4 datagram(s), 2 flow(s), 0 invalid")
}

func TestInspectCountsBothDirections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.pcap")
	q := tcpip.NewQuaternion(
		tcpip.MustParseIPv4EndPoint("10.0.0.1:5060"),
		tcpip.MustParseIPv4EndPoint("10.0.0.2:5060"),
	)
	b := builder.New()
	req, err := b.BuildUDP(q, []byte("ping"))
	require.NoError(t, err)
	resp, err := b.BuildUDP(q.Reverse(), []byte("pong!"))
	require.NoError(t, err)

	s, err := pcap.Create(path, 0)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, s.Send(core.RawPacket{Data: req, Timestamp: now}))
	require.NoError(t, s.Send(core.RawPacket{Data: resp, Timestamp: now.Add(time.Millisecond)}))
	require.NoError(t, s.Close())

	var buf bytes.Buffer
	require.NoError(t, runInspect(path, inspectOptions{}, &buf))
	assert.Contains(t, buf.String(), "2 datagram(s), 1 flow(s), 0 invalid")
	assert.Regexp(t, `10\.0\.0\.1:5060 10\.0\.0\.2:5060\s+1\s+1\s+9`, buf.String())

	buf.Reset()
	require.NoError(t, runInspect(path, inspectOptions{flow: "10.0.0.2:5060 10.0.0.1:5060"}, &buf))
	assert.Contains(t, buf.String(),
		"flow 10.0.0.2:5060 10.0.0.1:5060: forward 1, reverse 1, bytes 9 (first seen as 10.0.0.1:5060 10.0.0.2:5060)")

	buf.Reset()
	require.NoError(t, runInspect(path, inspectOptions{flow: "10.0.0.1:5060 10.0.0.9:5060"}, &buf))
	assert.Contains(t, buf.String(), "flow 10.0.0.1:5060 10.0.0.9:5060: not seen")

	assert.Error(t, runInspect(path, inspectOptions{flow: "10.0.0.1:5060"}, &buf))
}

func TestInspectCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pcap")
	q := tcpip.NewQuaternion(
		tcpip.MustParseIPv4EndPoint("10.0.0.1:1000"),
		tcpip.MustParseIPv4EndPoint("10.0.0.2:2000"),
	)
	frame, err := builder.New().BuildUDP(q, []byte("payload"))
	require.NoError(t, err)
	frame[len(frame)-1] ^= 0xff

	s, err := pcap.Create(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Send(core.RawPacket{Data: frame, Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	var buf bytes.Buffer
	err = runInspect(path, inspectOptions{}, &buf)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "#1 INVALID")
	assert.Contains(t, buf.String(), "1 datagram(s), 0 flow(s), 1 invalid")
	assert.Contains(t, buf.String(), "0 matched of 0 decoded")

	buf.Reset()
	require.NoError(t, runInspect(path, inspectOptions{noVerify: true}, &buf))
	assert.Contains(t, buf.String(), "1 datagram(s), 1 flow(s), 0 invalid")
}

const testPlan = `
name: probes
packets:
  - source: 10.1.0.1:5000
    destinations: [10.1.0.2:5000, 10.1.0.3:5000]
    payload: probe
    count: 3
`

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(good, []byte(testPlan), 0644))

	var buf bytes.Buffer
	require.NoError(t, runValidate(good, config.Default(), &buf))
	assert.Equal(t, "VALID: plan \"probes\", 1 packet(s), 6 datagram(s)\n", buf.String())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"packets": [{"destinations": ["10.0.0.1:1"]}]}`), 0644))
	buf.Reset()
	err := runValidate(bad, config.Default(), &buf)
	assert.ErrorIs(t, err, core.ErrPlanInvalid)
	assert.Contains(t, buf.String(), "INVALID:")
}

func TestRunPlan(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planPath, []byte(testPlan), 0644))
	out := filepath.Join(dir, "out.pcap")

	var buf bytes.Buffer
	require.NoError(t, runPlan(planPath, out, config.Default(), &buf))
	assert.Contains(t, buf.String(), "wrote 6 datagram(s) to "+out)

	buf.Reset()
	require.NoError(t, runInspect(out, inspectOptions{}, &buf))
	assert.Contains(t, buf.String(), "6 datagram(s), 2 flow(s), 0 invalid")

	buf.Reset()
	require.NoError(t, runInspect(out, inspectOptions{host: "10.1.0.3", protocol: "udp", port: 5000}, &buf))
	assert.Contains(t, buf.String(), "6 datagram(s), 1 flow(s), 0 invalid")
	assert.Contains(t, buf.String(), "3 matched of 6 decoded")
	assert.NotContains(t, buf.String(), "10.1.0.2:5000")

	buf.Reset()
	require.NoError(t, runInspect(out, inspectOptions{protocol: "tcp"}, &buf))
	assert.Contains(t, buf.String(), "6 datagram(s), 0 flow(s), 0 invalid")
	assert.Contains(t, buf.String(), "0 matched of 6 decoded")

	assert.Error(t, runInspect(out, inspectOptions{protocol: "bogus"}, &buf))
	assert.Error(t, runInspect(out, inspectOptions{host: "10.1.0"}, &buf))
}

func TestExecuteChecksum(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"checksum", "4500 0073 0000 4000 4011 0000 c0a8 0001 c0a8 00c7"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, "0xb861\n", buf.String())
}
