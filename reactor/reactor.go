package reactor

import (
	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/protocol"
)

// Reactor implements node.Reactor and drives every node-protocol concern
// spec §4.6 assigns the reactor: service dispatch, the File.Read pull
// loop, and the 1 Hz heartbeat. It holds the registered transports in
// iteration order, matching spec §5's "transport priority is the
// numerical iteration order of the registered nodes."
type Reactor struct {
	cfg   Config
	nodes []node.Node

	appInfo   appinfo.AppInfo
	haveApp   bool
	nextXferID uint64

	lastHeartbeatAt uint64
	haveHeartbeat   bool

	fetch fetchSession
}

type fetchSession struct {
	active        bool
	nodeIndex     int
	serverNodeID  uint16
	path          string
	offset        uint64
	transferID    uint64
	lastSentAt    uint64
	awaiting      bool
	needsNextRead bool
	retries       int
}

// New constructs a Reactor. cfg.Hardware and cfg.Writer are required;
// every other field falls back to its documented default.
func New(cfg Config) *Reactor {
	return &Reactor{cfg: cfg.withDefaults()}
}

// AddNode registers a transport. Nodes must all be added before the first
// call to Poll; order determines both send priority and, by extension,
// which transport a fetch session binds to.
func (r *Reactor) AddNode(n node.Node) { r.nodes = append(r.nodes, n) }

// SetAppInfo updates the resident image's descriptor GetInfo answers
// from. The caller (state machine) calls this after every Locate/Verify,
// including with ok=false when no valid image is resident.
func (r *Reactor) SetAppInfo(info appinfo.AppInfo, ok bool) {
	r.appInfo = info
	r.haveApp = ok
}

// Poll drives every registered node's Poll, then advances the pull loop
// (timeout/retry) and the heartbeat clock. uptime is microseconds since
// the bootloader started, per spec §6's Clock contract.
func (r *Reactor) Poll(uptime uint64) {
	for _, n := range r.nodes {
		n.Poll(r, node.Microseconds(uptime))
	}
	r.pumpFetch(uptime)
	r.pumpHeartbeat(uptime)
}

// BeginFetch starts a new File.Read pull loop against path on
// serverNodeID, resetting the image writer. It tries each registered node
// in order and binds the session to the first one that accepts the
// initial request (not anonymous, no backpressure). Returns false if no
// node could accept it.
func (r *Reactor) BeginFetch(uptime uint64, serverNodeID uint16, path string) bool {
	r.cfg.Writer.BeginWrite()
	r.fetch = fetchSession{
		active:       true,
		serverNodeID: serverNodeID,
		path:         path,
		transferID:   r.nextTransferID(),
	}
	return r.issueRead(uptime)
}

// CancelFetch aborts any in-progress pull loop without reporting a
// result. The caller (state machine) uses this on EmergencyStop or when
// abandoning a session in favor of a new source.
func (r *Reactor) CancelFetch() {
	if r.fetch.active && r.fetch.awaiting && r.fetch.nodeIndex < len(r.nodes) {
		r.nodes[r.fetch.nodeIndex].CancelRequest()
	}
	r.fetch = fetchSession{}
}

// FetchActive reports whether a pull loop is currently in progress.
func (r *Reactor) FetchActive() bool { return r.fetch.active }

func (r *Reactor) issueRead(uptime uint64) bool {
	req := protocol.FileReadRequest{
		Offset: r.fetch.offset,
		Length: uint16(r.cfg.ReadChunkSize),
		Path:   r.fetch.path,
	}
	buf := make([]byte, protocol.FileReadRequestFixedSize+1+len(req.Path))
	n, err := protocol.EncodeFileReadRequest(buf, req)
	if err != nil {
		return false
	}
	for i, tr := range r.nodes {
		if tr.SendRequest(protocol.ServiceFileRead, r.fetch.serverNodeID, r.fetch.transferID, buf[:n]) {
			r.fetch.nodeIndex = i
			r.fetch.awaiting = true
			r.fetch.lastSentAt = uptime
			return true
		}
	}
	return false
}

func (r *Reactor) pumpFetch(uptime uint64) {
	if !r.fetch.active {
		return
	}
	if r.fetch.needsNextRead {
		r.fetch.needsNextRead = false
		if !r.issueRead(uptime) {
			r.finishFetch(FetchResult{Err: errStalled})
		}
		return
	}
	if !r.fetch.awaiting {
		return
	}
	if uptime-r.fetch.lastSentAt < r.cfg.StallTimeout {
		return
	}
	if r.fetch.nodeIndex < len(r.nodes) {
		r.nodes[r.fetch.nodeIndex].CancelRequest()
	}
	r.fetch.awaiting = false
	r.fetch.retries++
	if r.fetch.retries > r.cfg.MaxRetriesPerStall {
		r.finishFetch(FetchResult{Err: errStalled})
		return
	}
	r.logDebug("file.read stalled, retrying", "retries", r.fetch.retries)
	if !r.issueRead(uptime) {
		r.finishFetch(FetchResult{Err: errStalled})
	}
}

func (r *Reactor) pumpHeartbeat(uptime uint64) {
	if r.haveHeartbeat && uptime-r.lastHeartbeatAt < r.cfg.HeartbeatInterval {
		return
	}
	mode, health, vssc := r.cfg.State()
	hb := protocol.Heartbeat{
		UptimeSeconds: uint32(uptime / 1_000_000),
		Health:        health,
		Mode:          mode,
		VSSC:          vssc,
	}
	buf := make([]byte, protocol.HeartbeatSize)
	n := protocol.EncodeHeartbeat(buf, hb)
	xferID := r.nextTransferID()
	for _, tr := range r.nodes {
		tr.PublishMessage(protocol.SubjectHeartbeat, xferID, buf[:n])
	}
	r.lastHeartbeatAt = uptime
	r.haveHeartbeat = true
}

func (r *Reactor) finishFetch(result FetchResult) {
	r.fetch = fetchSession{}
	r.cfg.OnFetchComplete(result)
}

func (r *Reactor) nextTransferID() uint64 {
	r.nextXferID++
	return r.nextXferID
}

func (r *Reactor) logDebug(msg string, kv ...interface{}) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Debug(msg, kv...)
	}
}
