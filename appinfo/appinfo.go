// Package appinfo locates and verifies the AppInfo descriptor embedded in
// a resident application image (spec §3, §4.2). It is the only component
// the state machine trusts to answer "is there a bootable image here,
// and is it the one it claims to be."
package appinfo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kocherga-go/kocherga/crc"
)

// Signature is the literal ASCII marker that opens a descriptor.
const Signature = "APDesc00"

// Size is the fixed on-disk size of the descriptor, per spec §3.
const Size = 32

// Alignment is the byte alignment the locator scans at; descriptors must
// start on an 8-byte boundary.
const Alignment = 8

// Field offsets within the descriptor, per spec §3.
const (
	offSignature    = 0
	offImageCRC     = 8
	offImageSize    = 16
	offVCSRevision  = 20
	offVersionMajor = 24
	offVersionMinor = 25
	offFlags        = 26
	offReserved     = 27
	offBuildTime    = 28
)

// Flag bits within the Flags field.
const (
	FlagRelease = 1 << 0
	FlagDirty   = 1 << 1
)

// ReservedByte is the value the spec mandates for the descriptor's
// Reserved byte on emission; the locator does not constrain it on input.
const ReservedByte = 0xFF

// AppInfo is the decoded, verified descriptor of a resident image.
type AppInfo struct {
	ImageCRC           uint64
	ImageSize          uint32
	VCSRevision        uint32
	VersionMajor       uint8
	VersionMinor       uint8
	Flags              uint8
	BuildTimestampUTC  uint32
	// Offset is where the descriptor begins within the scanned region,
	// relative to the region's start. Needed to mask out the ImageCRC
	// field when recomputing the image checksum.
	Offset int
}

// Release reports whether the release flag (bit 0) is set.
func (a AppInfo) Release() bool { return a.Flags&FlagRelease != 0 }

// Dirty reports whether the dirty flag (bit 1) is set.
func (a AppInfo) Dirty() bool { return a.Flags&FlagDirty != 0 }

// ErrNoValidImage is returned by Locate and Verify when no self-consistent,
// CRC-verified descriptor could be found in the scanned region. It is a
// sentinel, not a detailed diagnosis — spec §4.2 draws no distinction
// between "found nothing" and "found something broken": both route the
// state machine to the same NoAppToBoot outcome.
var ErrNoValidImage = errors.New("appinfo: no valid image found")

// ROM is the read side of the host's ROMBackend the core consumes: a flat
// view into program memory covering [0, Len()).
type ROM interface {
	ReadAt(off int, dst []byte) error
	Len() int
}

// Locate scans the region [0, rom.Len()) at Alignment-byte steps for the
// first descriptor whose signature matches and whose self-consistency
// checks (spec §4.2: ImageSize within the region, ImageSize a multiple of
// 8) pass, then verifies its ImageCRC against the region's actual content.
// It returns ErrNoValidImage if no descriptor in the region both
// self-consistency-checks and CRC-verifies.
//
// The spec recommends placing the descriptor near the start of the image
// to reduce scan latency; Locate makes no such assumption and always
// scans forward from offset 0, so a build that ignores the recommendation
// still verifies correctly, just more slowly.
func Locate(rom ROM) (AppInfo, error) {
	regionLen := rom.Len()
	header := make([]byte, Size)

	for off := 0; off+Size <= regionLen; off += Alignment {
		if err := rom.ReadAt(off, header); err != nil {
			return AppInfo{}, fmt.Errorf("appinfo: read at %d: %w", off, err)
		}
		if string(header[offSignature:offSignature+8]) != Signature {
			continue
		}

		candidate := decode(header, off)
		if !selfConsistent(candidate, regionLen) {
			continue
		}

		if err := verify(rom, candidate); err == nil {
			return candidate, nil
		}
	}

	return AppInfo{}, ErrNoValidImage
}

func decode(header []byte, off int) AppInfo {
	return AppInfo{
		ImageCRC:          binary.LittleEndian.Uint64(header[offImageCRC:]),
		ImageSize:         binary.LittleEndian.Uint32(header[offImageSize:]),
		VCSRevision:       binary.LittleEndian.Uint32(header[offVCSRevision:]),
		VersionMajor:      header[offVersionMajor],
		VersionMinor:      header[offVersionMinor],
		Flags:             header[offFlags],
		BuildTimestampUTC: binary.LittleEndian.Uint32(header[offBuildTime:]),
		Offset:            off,
	}
}

func selfConsistent(a AppInfo, regionLen int) bool {
	if a.ImageSize%8 != 0 {
		return false
	}
	if int(a.ImageSize) < a.Offset+Size {
		return false
	}
	if int(a.ImageSize) > regionLen {
		return false
	}
	return true
}

// verify recomputes CRC-64-WE over [0, ImageSize) with the 8 bytes at the
// descriptor's ImageCRC field treated as zero, and compares the result
// against the stored ImageCRC.
func verify(rom ROM, a AppInfo) error {
	const chunkSize = 4096
	buf := make([]byte, chunkSize)

	c := crc.NewCRC64()
	remaining := int(a.ImageSize)
	pos := 0
	crcFieldStart := a.Offset + offImageCRC
	crcFieldEnd := crcFieldStart + 8

	for remaining > 0 {
		n := remaining
		if n > chunkSize {
			n = chunkSize
		}
		chunk := buf[:n]
		if err := rom.ReadAt(pos, chunk); err != nil {
			return fmt.Errorf("appinfo: read at %d: %w", pos, err)
		}

		maskZeroRange(chunk, pos, crcFieldStart, crcFieldEnd)

		c.Add(chunk)
		pos += n
		remaining -= n
	}

	if c.Value() != a.ImageCRC {
		return ErrNoValidImage
	}
	return nil
}

// maskZeroRange zeroes out the portion of chunk (which covers absolute
// offsets [chunkStart, chunkStart+len(chunk))) that overlaps
// [zeroStart, zeroEnd).
func maskZeroRange(chunk []byte, chunkStart, zeroStart, zeroEnd int) {
	lo := zeroStart - chunkStart
	hi := zeroEnd - chunkStart
	if lo < 0 {
		lo = 0
	}
	if hi > len(chunk) {
		hi = len(chunk)
	}
	for i := lo; i < hi; i++ {
		if i >= 0 && i < len(chunk) {
			chunk[i] = 0
		}
	}
}

// Verify re-checks a previously located AppInfo against the current
// contents of rom. The state machine does not call it: at every boot it
// runs Locate afresh, which verifies the image itself, rather than
// trusting a cached result across resets.
func Verify(rom ROM, a AppInfo) error {
	return verify(rom, a)
}
