package main

import "github.com/kocherga-go/kocherga/protocol"

// fileServerReactor implements node.Reactor for the simulated remote peer
// in the update scenario: it answers File.Read against an in-memory file
// and ignores everything else, since the simulator never issues GetInfo or
// ExecuteCommand to this peer.
type fileServerReactor struct {
	file []byte
}

func (s *fileServerReactor) ProcessRequest(serviceID uint16, sourceNodeID uint16, payload []byte, buf []byte) (int, bool) {
	if serviceID != protocol.ServiceFileRead {
		return 0, false
	}
	req, err := protocol.DecodeFileReadRequest(payload)
	if err != nil {
		return 0, false
	}

	resp := protocol.FileReadResponse{Error: protocol.FileErrorOK}
	if int(req.Offset) < len(s.file) {
		end := int(req.Offset) + int(req.Length)
		if end > len(s.file) {
			end = len(s.file)
		}
		resp.Data = s.file[req.Offset:end]
	}
	return protocol.EncodeFileReadResponse(buf, resp), true
}

// ProcessResponse receives the device's ExecuteCommand response to the
// BeginSoftwareUpdate request update.go sends through the peer's node; the
// peer has no use for it and ignores it.
func (s *fileServerReactor) ProcessResponse(payload []byte) {}
