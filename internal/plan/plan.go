// Package plan reads packet plans: files describing a set of datagrams to
// build, one entry per packet template.
package plan

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"firestige.xyz/pktcraft/internal/builder"
	"firestige.xyz/pktcraft/internal/config"
	"firestige.xyz/pktcraft/internal/core"
	"firestige.xyz/pktcraft/pkg/tcpip"
)

// MaxCount bounds how many times one entry may be repeated. Beyond one
// identification window the IPv4 ID would repeat.
const MaxCount = 1 << 16

// Plan is a named list of packet templates.
type Plan struct {
	Name    string   `json:"name" yaml:"name"`
	Packets []Packet `json:"packets" yaml:"packets"`
}

// Packet describes one datagram sent from Source to every destination,
// Count times. Payload is literal text; PayloadHex is hex-encoded bytes.
// For protocols other than UDP the payload is carried verbatim as the
// transport segment.
type Packet struct {
	Name         string               `json:"name" yaml:"name"`
	Protocol     tcpip.Protocol       `json:"protocol" yaml:"protocol"`
	Source       tcpip.IPv4EndPoint   `json:"source" yaml:"source"`
	Destinations []tcpip.IPv4EndPoint `json:"destinations" yaml:"destinations"`
	Payload      string               `json:"payload" yaml:"payload"`
	PayloadHex   string               `json:"payload_hex" yaml:"payload_hex"`
	Count        int                  `json:"count" yaml:"count"`

	data []byte
}

// Bytes returns the decoded payload. Valid only after Validate.
func (p *Packet) Bytes() []byte { return p.data }

// Validate validates the plan and applies defaults: unnamed packets are
// named after their index, a zero protocol means UDP, a zero source
// address takes defaults.Source and a zero count means 1.
func (pl *Plan) Validate(defaults config.DefaultsConfig) error {
	if len(pl.Packets) == 0 {
		return fmt.Errorf("at least one packet is required: %w", core.ErrPlanInvalid)
	}

	for i := range pl.Packets {
		if err := pl.Packets[i].validate(i, defaults); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packet) validate(i int, defaults config.DefaultsConfig) error {
	if p.Name == "" {
		p.Name = fmt.Sprintf("packet-%d", i)
	}
	if p.Protocol == 0 {
		p.Protocol = tcpip.ProtocolUDP
	}
	if p.Source.Address.IsZero() {
		p.Source = defaults.Source
	}
	if p.Source.Address.IsZero() {
		return p.errorf("source address is required")
	}
	if p.Count == 0 {
		p.Count = 1
	}
	if p.Count < 0 || p.Count > MaxCount {
		return p.errorf("count must be between 1 and %d, got %d", MaxCount, p.Count)
	}

	if len(p.Destinations) == 0 {
		return p.errorf("at least one destination is required")
	}
	for j, dst := range p.Destinations {
		if dst.Address.IsZero() {
			return p.errorf("destinations[%d]: address is required", j)
		}
		if p.Protocol == tcpip.ProtocolUDP && dst.Port == 0 {
			return p.errorf("destinations[%d]: port is required for UDP", j)
		}
	}

	switch {
	case p.Payload != "" && p.PayloadHex != "":
		return p.errorf("payload and payload_hex are mutually exclusive")
	case p.PayloadHex != "":
		data, err := hex.DecodeString(strings.Join(strings.Fields(p.PayloadHex), ""))
		if err != nil {
			return p.errorf("payload_hex: %v", err)
		}
		p.data = data
	default:
		p.data = []byte(p.Payload)
	}

	limit := math.MaxUint16 - tcpip.IPHeaderLen
	if p.Protocol == tcpip.ProtocolUDP {
		limit = builder.MaxUDPPayload
	}
	if len(p.data) > limit {
		return fmt.Errorf("packet %q: payload of %d bytes exceeds %d: %w", p.Name, len(p.data), limit, core.ErrPayloadTooLarge)
	}
	return nil
}

func (p *Packet) errorf(format string, args ...any) error {
	return fmt.Errorf("packet %q: %s: %w", p.Name, fmt.Sprintf(format, args...), core.ErrPlanInvalid)
}

// Parse parses a plan from JSON.
func Parse(data []byte) (*Plan, error) {
	var pl Plan
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &pl, nil
}

// ParseYAML parses a plan from YAML.
func ParseYAML(data []byte) (*Plan, error) {
	var pl Plan
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &pl, nil
}

// ParseAuto picks the format from the file extension: .json is JSON,
// anything else is YAML.
func ParseAuto(data []byte, filename string) (*Plan, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return Parse(data)
	}
	return ParseYAML(data)
}

// Load reads, parses and validates the plan file at path.
func Load(path string, defaults config.DefaultsConfig) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	pl, err := ParseAuto(data, path)
	if err != nil {
		return nil, err
	}
	if err := pl.Validate(defaults); err != nil {
		return nil, err
	}
	return pl, nil
}

// Datagrams returns how many datagrams Build will produce.
func (pl *Plan) Datagrams() int {
	n := 0
	for _, p := range pl.Packets {
		n += p.Count * len(p.Destinations)
	}
	return n
}
