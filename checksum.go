package probe

// Checksum computes the Internet checksum (RFC 1071) of b.
// Words are read in network byte order, an odd trailing byte is padded with zero.
func Checksum(b []byte) uint16 {
	return ^fold(sum(b))
}

// ValidChecksum reports whether b, checksum field included, sums to 0xffff.
func ValidChecksum(b []byte) bool {
	return fold(sum(b)) == 0xffff
}

func sum(b []byte) uint32 {
	var s uint32
	n := len(b)
	for i := 0; i+1 < n; i += 2 {
		s += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if n%2 == 1 {
		s += uint32(b[n-1]) << 8
	}
	return s
}

func fold(s uint32) uint16 {
	for s>>16 != 0 {
		s = s>>16 + s&0xffff
	}
	return uint16(s)
}
