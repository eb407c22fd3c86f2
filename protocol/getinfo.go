package protocol

import "encoding/binary"

// GetInfoRequest carries no fields; the request payload is always empty.
// The type exists so callers have something to Encode/Decode symmetrically
// with the other services.
type GetInfoRequest struct{}

// EncodeGetInfoRequest writes the (empty) request and returns 0.
func EncodeGetInfoRequest(buf []byte) int { return 0 }

// DecodeGetInfoRequest always succeeds; GetInfo takes no parameters.
func DecodeGetInfoRequest(payload []byte) (GetInfoRequest, error) { return GetInfoRequest{}, nil }

// GetInfoResponse answers "who are you and what are you running" (spec
// §4.6): software version recovered from the resident image's AppInfo
// descriptor when one was found, plus hardware identity the host supplies
// at construction (spec's "hardware identifiers supplied by the platform,"
// folded in per SPEC_FULL.md's supplemental-feature note 7).
type GetInfoResponse struct {
	SoftwareVersionMajor uint8
	SoftwareVersionMinor uint8
	SoftwareVCSRevision  uint32
	SoftwareImageCRC     uint64 // 0 if no valid image was found
	SoftwareCRCSet       bool

	HardwareVersionMajor uint8
	HardwareVersionMinor uint8
	HardwareUniqueID     [16]byte
	Name                 string
}

// GetInfoResponseFixedSize is the size of every fixed-width field in the
// encoding, before the trailing length-prefixed Name.
const GetInfoResponseFixedSize = 1 + 1 + 4 + 8 + 1 + 1 + 1 + 16

// EncodeGetInfoResponse writes r into buf and returns the number of bytes
// written, or an error if Name is too long to encode.
func EncodeGetInfoResponse(buf []byte, r GetInfoResponse) (int, error) {
	if err := checkString("Name", r.Name); err != nil {
		return 0, err
	}
	off := 0
	buf[off] = r.SoftwareVersionMajor
	off++
	buf[off] = r.SoftwareVersionMinor
	off++
	binary.LittleEndian.PutUint32(buf[off:], r.SoftwareVCSRevision)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], r.SoftwareImageCRC)
	off += 8
	if r.SoftwareCRCSet {
		buf[off] = 1
	} else {
		buf[off] = 0
	}
	off++
	buf[off] = r.HardwareVersionMajor
	off++
	buf[off] = r.HardwareVersionMinor
	off++
	off += copy(buf[off:], r.HardwareUniqueID[:])
	off = putString(buf, off, r.Name)
	return off, nil
}

// DecodeGetInfoResponse is the inverse of EncodeGetInfoResponse.
func DecodeGetInfoResponse(payload []byte) (GetInfoResponse, error) {
	var r GetInfoResponse
	if len(payload) < GetInfoResponseFixedSize {
		return r, &TruncatedError{Service: "GetInfo response", Want: GetInfoResponseFixedSize, Got: len(payload)}
	}
	off := 0
	r.SoftwareVersionMajor = payload[off]
	off++
	r.SoftwareVersionMinor = payload[off]
	off++
	r.SoftwareVCSRevision = binary.LittleEndian.Uint32(payload[off:])
	off += 4
	r.SoftwareImageCRC = binary.LittleEndian.Uint64(payload[off:])
	off += 8
	r.SoftwareCRCSet = payload[off] != 0
	off++
	r.HardwareVersionMajor = payload[off]
	off++
	r.HardwareVersionMinor = payload[off]
	off++
	copy(r.HardwareUniqueID[:], payload[off:off+16])
	off += 16
	name, off, ok := getString(payload, off)
	if !ok {
		return r, &TruncatedError{Service: "GetInfo response name", Want: off + 1, Got: len(payload)}
	}
	r.Name = name
	return r, nil
}
