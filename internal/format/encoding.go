package format

import "encoding/binary"

// The header is written in host byte order: the counter is updated with
// native-width atomic stores, so any other reader of the same memory sees
// the target's own endianness.

// ReadU32 reads a host-order uint32 from b at off.
func ReadU32(b []byte, off int) uint32 {
	return binary.NativeEndian.Uint32(b[off : off+4])
}

// PutU32 writes a host-order uint32 to b at off.
func PutU32(b []byte, off int, v uint32) {
	binary.NativeEndian.PutUint32(b[off:off+4], v)
}
