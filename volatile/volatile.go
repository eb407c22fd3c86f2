// Package volatile implements the one-shot, CRC-protected cross-reset
// channel described in spec §3 and §4.1: a single typed record living in a
// RAM region the host guarantees survives a soft reset (but not a power
// loss), used to hand a short-lived intent ("resume the update already in
// progress with server X, path Y") from one boot to the next.
//
// There is deliberately no dynamic memory here: Storage wraps a
// caller-owned byte slice of exactly StorageSize(T) bytes and allocates
// no buffer of its own.
package volatile

import (
	"unsafe"

	"github.com/kocherga-go/kocherga/crc"
)

// EraseByte is written across the whole region after a successful Take,
// so that a half-read, half-stale region can never be mistaken for a fresh
// record on a later boot.
const EraseByte = 0xCA

// Storage marshals a fixed-size record of type T into a byte region with
// an 8-byte CRC-64-WE trailer. Producer and consumer must agree on T's
// memory layout byte-for-byte — this is a raw reinterpretation of memory,
// not a portable encoding, mirroring the original design note that
// "producer and consumer must be the same build."
//
// Storage is not safe for concurrent use; spec §5 assigns exclusive
// ownership of the region to the top-level state machine.
type Storage[T any] struct {
	region []byte
}

// StorageSize returns the number of bytes Storage[T] requires: the raw
// size of T plus an 8-byte CRC-64-WE trailer.
func StorageSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) + 8
}

// New wraps region, which must be exactly StorageSize[T]() bytes, as a
// Storage[T]. It panics on a mismatched length since this indicates a
// host integration bug, not a runtime condition the bootloader can
// recover from.
func New[T any](region []byte) Storage[T] {
	if len(region) != StorageSize[T]() {
		panic("volatile: region size does not match StorageSize[T]()")
	}
	return Storage[T]{region: region}
}

// Store writes payload's raw bytes into the region followed by the
// CRC-64-WE of those bytes. It may be called at most meaningfully once per
// boot per spec §3's lifecycle note, though nothing here enforces that —
// the state machine is the sole caller and does so at most once, just
// before requesting a platform reset.
func (s Storage[T]) Store(payload T) {
	raw := rawBytes(&payload)
	copy(s.region, raw)

	c := crc.NewCRC64()
	c.Add(raw)
	trailer := c.Bytes()
	copy(s.region[len(raw):], trailer[:])
}

// Take reads the payload back out, validating the CRC trailer. Regardless
// of outcome when the CRC is valid, it then overwrites the entire region
// with EraseByte so a second Take (or a read after a half-written Store
// that never got to Take) cannot observe a stale record. If the CRC does
// not verify, the region is left untouched and ok is false — a corrupted
// region must not be erased, since erasing it would destroy evidence of
// memory corruption in whatever is aliasing it.
func (s Storage[T]) Take() (value T, ok bool) {
	payloadLen := len(s.region) - 8
	raw := s.region[:payloadLen]
	trailer := s.region[payloadLen:]

	c := crc.NewCRC64()
	c.Add(raw)
	want := c.Bytes()
	for i := range want {
		if trailer[i] != want[i] {
			return value, false
		}
	}

	value = *(*T)(unsafe.Pointer(&raw[0]))

	for i := range s.region {
		s.region[i] = EraseByte
	}
	return value, true
}

// rawBytes reinterprets v's memory as a byte slice without copying beyond
// what the caller already owns. T must be a fixed-size, pointer-free value
// type (the bootloader's records are flat structs of integers and byte
// arrays) — this is the same constraint the original C++ VolatileStorage
// places on its template parameter via static layout assumptions.
func rawBytes[T any](v *T) []byte {
	size := int(unsafe.Sizeof(*v))
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}
