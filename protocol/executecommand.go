package protocol

import "encoding/binary"

// ExecuteCommandRequest carries one of the command ids in constants.go.
// Parameter is only meaningful for CommandBeginSoftwareUpdate, where it is
// the path to fetch; FileServerNodeID names the node hosting that file.
// Other commands ignore both fields, matching spec §4.6's "BeginSoftware
// Update(file_server_node_id, image_path)" being the only parameterized
// command among the four.
type ExecuteCommandRequest struct {
	CommandID        uint16
	FileServerNodeID uint16
	Parameter        string
}

// ExecuteCommandRequestFixedSize is the size of the fixed-width prefix,
// before the trailing length-prefixed Parameter.
const ExecuteCommandRequestFixedSize = 2 + 2

// EncodeExecuteCommandRequest writes req into buf.
func EncodeExecuteCommandRequest(buf []byte, req ExecuteCommandRequest) (int, error) {
	if err := checkString("Parameter", req.Parameter); err != nil {
		return 0, err
	}
	off := 0
	binary.LittleEndian.PutUint16(buf[off:], req.CommandID)
	off += 2
	binary.LittleEndian.PutUint16(buf[off:], req.FileServerNodeID)
	off += 2
	off = putString(buf, off, req.Parameter)
	return off, nil
}

// DecodeExecuteCommandRequest is the inverse of EncodeExecuteCommandRequest.
func DecodeExecuteCommandRequest(payload []byte) (ExecuteCommandRequest, error) {
	var r ExecuteCommandRequest
	if len(payload) < ExecuteCommandRequestFixedSize {
		return r, &TruncatedError{Service: "ExecuteCommand request", Want: ExecuteCommandRequestFixedSize, Got: len(payload)}
	}
	off := 0
	r.CommandID = binary.LittleEndian.Uint16(payload[off:])
	off += 2
	r.FileServerNodeID = binary.LittleEndian.Uint16(payload[off:])
	off += 2
	param, off, ok := getString(payload, off)
	if !ok {
		return r, &TruncatedError{Service: "ExecuteCommand request parameter", Want: off + 1, Got: len(payload)}
	}
	r.Parameter = param
	return r, nil
}

// ExecuteCommandResponse reports one of the CommandStatus* codes (spec
// §4.6: "each returns a status code").
type ExecuteCommandResponse struct {
	Status uint8
}

// ExecuteCommandResponseSize is the fixed encoded size.
const ExecuteCommandResponseSize = 1

// EncodeExecuteCommandResponse writes resp into buf and returns the
// number of bytes written.
func EncodeExecuteCommandResponse(buf []byte, resp ExecuteCommandResponse) int {
	buf[0] = resp.Status
	return ExecuteCommandResponseSize
}

// DecodeExecuteCommandResponse is the inverse of EncodeExecuteCommandResponse.
func DecodeExecuteCommandResponse(payload []byte) (ExecuteCommandResponse, error) {
	if len(payload) < ExecuteCommandResponseSize {
		return ExecuteCommandResponse{}, &TruncatedError{Service: "ExecuteCommand response", Want: ExecuteCommandResponseSize, Got: len(payload)}
	}
	return ExecuteCommandResponse{Status: payload[0]}, nil
}
