package protocol

import "encoding/binary"

// FileReadRequest asks a remote file server for up to Length
// bytes of Path starting at Offset. The reactor's pull loop (spec §4.6)
// reissues this with an advancing Offset until the response comes back
// shorter than requested.
type FileReadRequest struct {
	Offset uint64
	Length uint16 // requested chunk size; a shorter response means EOF
	Path   string
}

// FileReadRequestFixedSize is the size of the fixed-width prefix, before
// the trailing length-prefixed Path.
const FileReadRequestFixedSize = 8 + 2

// EncodeFileReadRequest writes req into buf.
func EncodeFileReadRequest(buf []byte, req FileReadRequest) (int, error) {
	if err := checkString("Path", req.Path); err != nil {
		return 0, err
	}
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], req.Offset)
	off += 8
	binary.LittleEndian.PutUint16(buf[off:], req.Length)
	off += 2
	off = putString(buf, off, req.Path)
	return off, nil
}

// DecodeFileReadRequest is the inverse of EncodeFileReadRequest.
func DecodeFileReadRequest(payload []byte) (FileReadRequest, error) {
	var r FileReadRequest
	if len(payload) < FileReadRequestFixedSize {
		return r, &TruncatedError{Service: "File.Read request", Want: FileReadRequestFixedSize, Got: len(payload)}
	}
	off := 0
	r.Offset = binary.LittleEndian.Uint64(payload[off:])
	off += 8
	r.Length = binary.LittleEndian.Uint16(payload[off:])
	off += 2
	path, off, ok := getString(payload, off)
	if !ok {
		return r, &TruncatedError{Service: "File.Read request path", Want: off + 1, Got: len(payload)}
	}
	r.Path = path
	return r, nil
}

// FileReadResponse carries the chunk read, or a nonzero Error. Per spec
// §4.6, a short Data (shorter than the requested read size) is not an
// error: it signals end of file and the reactor treats the transfer as
// complete.
type FileReadResponse struct {
	Error uint16
	Data  []byte
}

// FileReadResponseFixedSize is the size of the fixed-width prefix, before
// the trailing raw (not length-prefixed — it runs to the end of the
// payload) Data.
const FileReadResponseFixedSize = 2

// EncodeFileReadResponse writes resp into buf and returns the number of
// bytes written. Data is appended verbatim (no length prefix: File.Read
// payloads end at the transfer boundary, so no terminator is needed).
func EncodeFileReadResponse(buf []byte, resp FileReadResponse) int {
	off := 0
	binary.LittleEndian.PutUint16(buf[off:], resp.Error)
	off += 2
	off += copy(buf[off:], resp.Data)
	return off
}

// DecodeFileReadResponse is the inverse of EncodeFileReadResponse. The
// returned Data aliases payload; callers that need to retain it must copy
// it first, exactly as the serial parser's own buffer-lifetime rule
// requires of payload-bearing Transfers.
func DecodeFileReadResponse(payload []byte) (FileReadResponse, error) {
	if len(payload) < FileReadResponseFixedSize {
		return FileReadResponse{}, &TruncatedError{Service: "File.Read response", Want: FileReadResponseFixedSize, Got: len(payload)}
	}
	return FileReadResponse{
		Error: binary.LittleEndian.Uint16(payload[0:2]),
		Data:  payload[2:],
	}, nil
}
