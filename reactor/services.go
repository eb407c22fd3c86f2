package reactor

import (
	"errors"

	"github.com/kocherga-go/kocherga/protocol"
)

// errStalled is the error FetchResult carries when the pull loop was
// abandoned after exhausting its retry budget (spec §7 error kind 4).
var errStalled = errors.New("reactor: file.read stalled past retry budget")

// ProcessRequest implements node.Reactor: it dispatches an inbound
// service request to the matching handler and encodes the response into
// buf.
func (r *Reactor) ProcessRequest(serviceID uint16, sourceNodeID uint16, payload []byte, buf []byte) (int, bool) {
	switch serviceID {
	case protocol.ServiceGetInfo:
		return r.handleGetInfo(buf)
	case protocol.ServiceExecuteCommand:
		return r.handleExecuteCommand(payload, buf)
	default:
		return 0, false
	}
}

func (r *Reactor) handleGetInfo(buf []byte) (int, bool) {
	resp := protocol.GetInfoResponse{
		HardwareVersionMajor: r.cfg.Hardware.VersionMajor,
		HardwareVersionMinor: r.cfg.Hardware.VersionMinor,
		HardwareUniqueID:     r.cfg.Hardware.UniqueID,
		Name:                 r.cfg.Hardware.Name,
	}
	if r.haveApp {
		resp.SoftwareVersionMajor = r.appInfo.VersionMajor
		resp.SoftwareVersionMinor = r.appInfo.VersionMinor
		resp.SoftwareVCSRevision = r.appInfo.VCSRevision
		resp.SoftwareImageCRC = r.appInfo.ImageCRC
		resp.SoftwareCRCSet = true
	}
	n, err := protocol.EncodeGetInfoResponse(buf, resp)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r *Reactor) handleExecuteCommand(payload []byte, buf []byte) (int, bool) {
	cmd, err := protocol.DecodeExecuteCommandRequest(payload)
	if err != nil {
		return 0, false
	}
	resp := r.cfg.HandleCommand(cmd)
	n := protocol.EncodeExecuteCommandResponse(buf, resp)
	return n, true
}

// ProcessResponse implements node.Reactor. The only request the reactor
// ever issues is File.Read, so any matched response belongs to the
// current fetch session — node.Node's single-outstanding-request rule
// (spec §4.4) and the exact four-field match in SerialNode.processResponse
// already guarantee this response answers the specific request we sent.
func (r *Reactor) ProcessResponse(payload []byte) {
	if !r.fetch.active || !r.fetch.awaiting {
		return
	}
	resp, err := protocol.DecodeFileReadResponse(payload)
	if err != nil {
		return
	}
	r.fetch.awaiting = false
	r.fetch.retries = 0

	if resp.Error != protocol.FileErrorOK {
		r.finishFetch(FetchResult{Err: errFileRead(resp.Error)})
		return
	}

	if err := r.cfg.Writer.Write(resp.Data); err != nil {
		r.finishFetch(FetchResult{Err: err})
		return
	}

	requested := r.cfg.ReadChunkSize
	r.fetch.offset += uint64(len(resp.Data))

	if len(resp.Data) < requested {
		total, err := r.cfg.Writer.EndWrite()
		r.finishFetch(FetchResult{BytesWritten: total, Err: err})
		return
	}

	// The next request is issued from pumpFetch, on the next Poll tick,
	// so it is timestamped with the real current uptime rather than the
	// previous request's (ProcessResponse is never given one, since
	// node.Reactor's signature is shared with GetInfo/ExecuteCommand
	// dispatch, which have no use for it).
	r.fetch.needsNextRead = true
}

// errFileRead wraps a nonzero File.Read protocol error code as a Go error.
type errFileReadCode uint16

func (e errFileReadCode) Error() string {
	switch uint16(e) {
	case protocol.FileErrorNotFound:
		return "reactor: remote file not found"
	case protocol.FileErrorIO:
		return "reactor: remote file I/O error"
	default:
		return "reactor: file.read reported an error"
	}
}

func errFileRead(code uint16) error { return errFileReadCode(code) }
