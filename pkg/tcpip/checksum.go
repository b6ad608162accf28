package tcpip

import "encoding/binary"

// Checksum computes the Internet checksum of b as defined by RFC 1071:
// the one's complement of the one's complement sum of all 16-bit
// big-endian words. An odd trailing byte is padded with a zero low byte.
func Checksum(b []byte) uint16 {
	var c Checksummer
	c.Write(b)
	return c.Sum16()
}

// Checksummer accumulates an Internet checksum over several writes, so a
// pseudo-header and a transport segment can be summed without copying
// them into one buffer. Splitting the input at odd offsets gives the same
// result as a single write.
//
// The zero value is ready to use.
type Checksummer struct {
	sum uint64
	// odd is set when the last write ended on the high byte of a word.
	odd bool
}

// Write adds p to the running sum. It never returns an error.
func (c *Checksummer) Write(p []byte) (int, error) {
	n := len(p)
	if c.odd && len(p) > 0 {
		c.sum += uint64(p[0])
		p = p[1:]
		c.odd = false
	}
	for len(p) >= 8 {
		v := binary.BigEndian.Uint64(p)
		c.sum += v>>48 + v>>32&0xffff + v>>16&0xffff + v&0xffff
		p = p[8:]
	}
	for len(p) >= 2 {
		c.sum += uint64(binary.BigEndian.Uint16(p))
		p = p[2:]
	}
	if len(p) == 1 {
		c.sum += uint64(p[0]) << 8
		c.odd = true
	}
	return n, nil
}

// AddUint16 adds a single word to the running sum. It must not be called
// while an odd byte is pending.
func (c *Checksummer) AddUint16(v uint16) {
	c.sum += uint64(v)
}

// Sum16 returns the checksum of everything written so far.
func (c *Checksummer) Sum16() uint16 {
	return ^fold(c.sum)
}

func fold(sum uint64) uint16 {
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return uint16(sum)
}

// neverZero maps a computed transport checksum of zero to 0xffff. Both
// are zero in one's complement arithmetic, but RFC 768 reserves a
// transmitted zero for "no checksum".
func neverZero(sum uint16) uint16 {
	if sum == 0 {
		return 0xffff
	}
	return sum
}
