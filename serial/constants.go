package serial

// FrameDelimiter opens and closes every frame on the wire.
const FrameDelimiter byte = 0x9E

// EscapePrefix marks the next byte as escaped: the literal value sent is
// EscapePrefix followed by the bitwise complement of the original byte.
const EscapePrefix byte = 0x8E

// FrameFormatVersion is the only header Version value the parser accepts.
const FrameFormatVersion byte = 0

// HeaderSize is the fixed size of a frame header in bytes.
const HeaderSize = 32

// CRCSize is the size, in bytes, of both the header CRC field and the
// trailing payload CRC.
const CRCSize = 4

// Header field byte offsets, little-endian for multi-byte fields, per
// spec §4.5.
const (
	offVersion     = 0
	offPriority    = 1
	offSource      = 2 // 2 bytes
	offDestination = 4 // 2 bytes
	offDataSpec    = 6 // 2 bytes
	offReserved    = 8 // 8 bytes, zero on emit, ignored on receive
	offTransferID  = 16 // 8 bytes
	offFrameIndex  = 24 // 4 bytes
	offHeaderCRC   = 28 // 4 bytes
)

// frameIndexEOTReference is the only accepted value of the 4-byte
// FrameIndex/EOT field: frame 0, marked as both first and last (EOT bit
// 0x80 set). Multi-frame transfers are out of scope per spec Open
// Question (b).
var frameIndexEOTReference = [4]byte{0, 0, 0, 0x80}

// DataSpec masks, re-exported from node for convenience within this
// package's wire-level code.
const (
	dataSpecRequestMask  uint16 = 0x8000
	dataSpecResponseMask uint16 = 0xC000
)
