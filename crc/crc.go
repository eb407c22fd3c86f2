// Package crc implements the two checksum algorithms used throughout the
// bootloader: CRC-64-WE, used to protect firmware images and volatile
// cross-reset records, and CRC-32C (Castagnoli), used to protect UAVCAN/
// serial frames.
//
// Both types are streaming: bytes may be fed one at a time or in slices, and
// neither allocates after construction. This mirrors the byte-at-a-time
// accumulator shape of kocherga's original C++ implementation, where the
// register must survive being reset mid-stream (the serial codec reuses one
// accumulator across a frame's header and then its payload).
package crc

// CRC64 computes CRC-64-WE: non-reflected, polynomial 0x42F0E1EBA9EA3693,
// initial value and final XOR both 0xFFFFFFFFFFFFFFFF.
//
// The zero value is not usable; construct with NewCRC64.
type CRC64 struct {
	value uint64
}

const (
	crc64Poly = 0x42F0E1EBA9EA3693
	crc64Init = 0xFFFFFFFFFFFFFFFF
	crc64Xor  = 0xFFFFFFFFFFFFFFFF
	// Residue64 is the value the raw CRC64 register (before the final XOR
	// that Value applies) holds after a correctly-CRC'd stream (payload
	// followed by its own big-endian CRC bytes) has been fed through Add
	// in full.
	Residue64 = 0xFCACBEBD5931A992
)

// NewCRC64 returns a CRC64 accumulator in its initial state.
func NewCRC64() CRC64 {
	return CRC64{value: crc64Init}
}

// Add folds b into the running checksum.
func (c *CRC64) Add(b []byte) {
	for _, x := range b {
		c.value ^= uint64(x) << 56
		for i := 0; i < 8; i++ {
			if c.value&0x8000000000000000 != 0 {
				c.value = (c.value << 1) ^ crc64Poly
			} else {
				c.value <<= 1
			}
		}
	}
}

// AddByte folds a single byte into the running checksum.
func (c *CRC64) AddByte(b byte) {
	c.value ^= uint64(b) << 56
	for i := 0; i < 8; i++ {
		if c.value&0x8000000000000000 != 0 {
			c.value = (c.value << 1) ^ crc64Poly
		} else {
			c.value <<= 1
		}
	}
}

// Value returns the checksum of everything added so far, with the final
// XOR applied.
func (c CRC64) Value() uint64 { return c.value ^ crc64Xor }

// Bytes returns Value() encoded big-endian, the wire representation used by
// the AppInfo descriptor's ImageCRC field and by VolatileStorage's trailer.
func (c CRC64) Bytes() [8]byte {
	v := c.Value()
	return [8]byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// IsResidueCorrect reports whether the accumulator, having ingested a
// message followed immediately by that message's own CRC bytes (as
// produced by Bytes), now holds the fixed residue value. This lets a
// verifier check a CRC without computing the message checksum separately
// from the trailer comparison.
func (c CRC64) IsResidueCorrect() bool { return c.value == Residue64 }

// CRC64Of is a convenience wrapper for one-shot checksums.
func CRC64Of(b []byte) uint64 {
	c := NewCRC64()
	c.Add(b)
	return c.Value()
}

// CRC32C computes CRC-32C (Castagnoli): reflected, reflected polynomial
// 0x82F63B78, initial value and final XOR both 0xFFFFFFFF.
type CRC32C struct {
	value uint32
}

const (
	crc32cReflectedPoly = 0x82F63B78
	crc32cInit          = 0xFFFFFFFF
	crc32cXor           = 0xFFFFFFFF
	// Residue32 is the value the raw CRC32C register (before the final XOR
	// that Value applies) holds after a correctly-CRC'd stream has had its
	// own little-endian CRC bytes fed back through Add.
	Residue32 = 0xB798B438
)

// NewCRC32C returns a CRC32C accumulator in its initial state.
func NewCRC32C() CRC32C {
	return CRC32C{value: crc32cInit}
}

// AddByte folds a single byte into the running checksum.
func (c *CRC32C) AddByte(b byte) {
	c.value ^= uint32(b)
	for i := 0; i < 8; i++ {
		if c.value&1 != 0 {
			c.value = (c.value >> 1) ^ crc32cReflectedPoly
		} else {
			c.value >>= 1
		}
	}
}

// Add folds b into the running checksum.
func (c *CRC32C) Add(b []byte) {
	for _, x := range b {
		c.AddByte(x)
	}
}

// Value returns the checksum of everything added so far, with the final
// XOR applied.
func (c CRC32C) Value() uint32 { return c.value ^ crc32cXor }

// Bytes returns Value() encoded little-endian, the wire representation
// used by both the serial header CRC and payload CRC fields.
func (c CRC32C) Bytes() [4]byte {
	v := c.Value()
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// IsResidueCorrect reports whether the pre-XOR register equals Residue32,
// the value reached after ingesting a correctly-CRC'd stream followed by
// its own CRC trailer. The raw register (not Value()) is what the UAVCAN/
// serial parser checks, since it never re-derives Value() mid-stream.
func (c CRC32C) IsResidueCorrect() bool { return c.value == Residue32 }
