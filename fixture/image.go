package fixture

import (
	"encoding/binary"

	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/crc"
)

// Image is an AppInfo descriptor's worth of configuration for Build: the
// fields a real post-link step would fill in (spec §6's "build-side
// collaborator"), minus ImageCRC, which Build always computes.
type Image struct {
	Size              int
	DescriptorOffset  int
	VCSRevision       uint32
	VersionMajor      uint8
	VersionMinor      uint8
	Flags             uint8
	BuildTimestampUTC uint32
}

// Build constructs a Size-byte image with a self-consistent, correctly
// CRC'd AppInfo descriptor at DescriptorOffset, exactly as the build-side
// collaborator described in spec §6 would produce: pad to Size, fill in
// the descriptor fields, then compute CRC-64-WE over the whole image with
// the ImageCRC field zeroed.
func Build(img Image) []byte {
	data := make([]byte, img.Size)
	copy(data[img.DescriptorOffset:], appinfo.Signature)

	off := img.DescriptorOffset
	binary.LittleEndian.PutUint32(data[off+16:], uint32(img.Size)) // offImageSize
	binary.LittleEndian.PutUint32(data[off+20:], img.VCSRevision)  // offVCSRevision
	data[off+24] = img.VersionMajor
	data[off+25] = img.VersionMinor
	data[off+26] = img.Flags
	data[off+27] = appinfo.ReservedByte
	binary.LittleEndian.PutUint32(data[off+28:], img.BuildTimestampUTC) // offBuildTime

	c := crc.NewCRC64()
	c.Add(data)
	binary.LittleEndian.PutUint64(data[off+8:], c.Value()) // offImageCRC
	return data
}

// Corrupt inverts every bit of data's last byte, away from any descriptor
// placed at offsets [0, 64), to simulate scenario 3 (power loss mid-write):
// the descriptor's own bytes are untouched but the CRC no longer matches.
// It leaves data unchanged when len(data) is 64 or less.
func Corrupt(data []byte) {
	if len(data) > 64 {
		data[len(data)-1] ^= 0xFF
	}
}

// ROM is a flat in-memory ROMBackend (spec §6) backing a Build'd image in
// tests and the simulator. It satisfies appinfo.ROM, rom.Backend, and
// statemachine.ROM all at once.
type ROM struct {
	Data []byte
}

// NewROM wraps data, which Build typically produced, as a ROM. Growing
// past len(Data) is not supported: the region size is fixed at
// construction, matching the core's fully-static memory model.
func NewROM(data []byte) *ROM { return &ROM{Data: data} }

func (r *ROM) ReadAt(off int, dst []byte) error {
	copy(dst, r.Data[off:off+len(dst)])
	return nil
}

func (r *ROM) Len() int { return len(r.Data) }

func (r *ROM) Write(off int, data []byte) error {
	copy(r.Data[off:off+len(data)], data)
	return nil
}
