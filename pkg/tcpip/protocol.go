package tcpip

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol is an IANA-assigned IP protocol number.
type Protocol uint8

const (
	ProtocolTCP Protocol = 6
	ProtocolUDP Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return "Protocol(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseProtocol accepts "tcp", "udp" (any case, surrounding blanks
// ignored) or a decimal protocol number.
func ParseProtocol(s string) (Protocol, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "tcp":
		return ProtocolTCP, nil
	case "udp":
		return ProtocolUDP, nil
	default:
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return 0, fmt.Errorf("tcpip: unknown protocol %q", s)
		}
		return Protocol(n), nil
	}
}

// MarshalText implements encoding.TextMarshaler. Known protocols use
// their lower-case name, others their number.
func (p Protocol) MarshalText() ([]byte, error) {
	switch p {
	case ProtocolTCP, ProtocolUDP:
		return []byte(strings.ToLower(p.String())), nil
	default:
		return []byte(strconv.Itoa(int(p))), nil
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	v, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TCPFlags is the control-bit field of a TCP header. Only the flag values
// are defined here.
type TCPFlags uint8

const (
	TCPFlagFIN TCPFlags = 1 << iota
	TCPFlagSYN
	TCPFlagRST
	TCPFlagPSH
	TCPFlagACK
	TCPFlagURG
	TCPFlagECE
	TCPFlagCWR
)

var tcpFlagNames = [...]string{"FIN", "SYN", "RST", "PSH", "ACK", "URG", "ECE", "CWR"}

// Has reports whether all bits of mask are set in f.
func (f TCPFlags) Has(mask TCPFlags) bool { return f&mask == mask }

// String returns the set flags in the form "[SYN,ACK]".
func (f TCPFlags) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for i, name := range tcpFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
		first = false
	}
	sb.WriteByte(']')
	return sb.String()
}
