// Package node defines the transport-agnostic vocabulary the reactor
// speaks: Transfer, the node capability set (spec §4.4), and the small
// pieces of state — State, ImageSession — the reactor and state
// machine pass across that boundary.
//
// A transport (serial, CAN, ...) implements Node; the reactor iterates a
// slice of Nodes in registration order and never depends on which
// concrete transport it is talking to. There is no inheritance hierarchy
// here, just the interface the spec calls a "capability set."
package node

// AnonymousNodeID is the sentinel meaning "no node ID assigned" or
// "broadcast," depending on context, per spec §3.
const AnonymousNodeID uint16 = 0xFFFF

// DataSpecRequestMask and DataSpecResponseMask tag a DataSpec value as a
// service request or response; anything else is a subject (message) id.
const (
	DataSpecRequestMask  uint16 = 0x8000
	DataSpecResponseMask uint16 = 0xC000
)

// DefaultPriority is the lowest transfer priority (7), used when a
// transmitting node does not set one explicitly.
const DefaultPriority uint8 = 7

// Metadata is a transfer's envelope: everything about a Transfer except
// its payload bytes, per spec §3.
type Metadata struct {
	Priority    uint8
	Source      uint16
	Destination uint16
	DataSpec    uint16
	TransferID  uint64
}

// IsRequest reports whether DataSpec encodes a service request, and if
// so, the service id.
func (m Metadata) IsRequest() (serviceID uint16, ok bool) {
	if m.DataSpec&DataSpecResponseMask == DataSpecResponseMask {
		return 0, false
	}
	if m.DataSpec&DataSpecRequestMask == DataSpecRequestMask {
		return m.DataSpec &^ DataSpecRequestMask, true
	}
	return 0, false
}

// IsResponse reports whether DataSpec encodes a service response, and if
// so, the service id.
func (m Metadata) IsResponse() (serviceID uint16, ok bool) {
	if m.DataSpec&DataSpecResponseMask == DataSpecResponseMask {
		return m.DataSpec &^ DataSpecResponseMask, true
	}
	return 0, false
}

// SubjectID returns DataSpec interpreted as a subject id; only meaningful
// when neither IsRequest nor IsResponse reports true.
func (m Metadata) SubjectID() uint16 { return m.DataSpec }

// Transfer is a logical message: metadata plus a payload. Payload may
// alias transport-internal buffers with a documented lifetime (see the
// serial package); callers that need to retain it past that lifetime must
// copy it first.
type Transfer struct {
	Meta    Metadata
	Payload []byte
}

// Reactor is the callback surface a Node delivers received transfers
// into, during the same synchronous Poll call that received them. There
// is no cycle here in the usual OOP sense: Reactor is invoked by Node,
// and Node is driven by Reactor's own Poll loop over its registered
// nodes — each direction is a plain function call, never concurrent with
// the other.
type Reactor interface {
	// ProcessRequest handles an inbound service request addressed to
	// this node's local id. It writes the response payload into buf and
	// returns its length, or false if no response should be sent (for
	// example, the service id is unrecognized).
	ProcessRequest(serviceID uint16, sourceNodeID uint16, payload []byte, buf []byte) (n int, ok bool)

	// ProcessResponse handles a response that matched this node's single
	// outstanding pending request.
	ProcessResponse(payload []byte)
}

// Node is the capability set spec §4.4 requires of every transport:
// cooperative, non-blocking progress plus request/response/publish.
type Node interface {
	// Poll drains available inbound bytes/frames, delivering any
	// completed transfers to reactor, and flushes any pending outbound
	// work. It never blocks.
	Poll(reactor Reactor, uptime Microseconds)

	// SendRequest issues a new service request if this node has no
	// request already pending. It returns false if the node is
	// anonymous (no local node id assigned) or the transport refused
	// the bytes (backpressure).
	SendRequest(serviceID uint16, serverNodeID uint16, transferID uint64, payload []byte) bool

	// CancelRequest clears the pending-request slot, if any. A response
	// that arrives after cancellation is ignored.
	CancelRequest()

	// PublishMessage sends a message on subjectID. Returns false on
	// backpressure or if the node is anonymous.
	PublishMessage(subjectID uint16, transferID uint64, payload []byte) bool
}

// Microseconds is a monotonic timestamp since the bootloader started,
// per spec §6's Clock contract: it must never go backwards.
type Microseconds uint64

// Mode mirrors the standard node-protocol health/mode vocabulary the
// reactor's heartbeat and GetInfo responses use.
type Mode uint8

const (
	ModeOperational Mode = iota
	ModeInitialization
	ModeMaintenance
	ModeSoftwareUpdate
)

// Health mirrors the standard node-protocol health vocabulary.
type Health uint8

const (
	HealthOk Health = iota
	HealthWarning
	HealthError
	HealthCritical
)

// State is the node-protocol-visible state of this participant: local
// identity (possibly still anonymous), uptime, mode, health, and the
// vendor-specific status code (VSSC) the heartbeat carries.
type State struct {
	LocalNodeID *uint16 // nil means anonymous
	Uptime      Microseconds
	Mode        Mode
	Health      Health
	VSSC        uint8
}

// ImageSession tracks an in-progress firmware fetch over a File.Read pull
// loop, per spec §3.
type ImageSession struct {
	ServerNodeID    uint16
	Path            string
	NextReadOffset  uint64
	WriteOffset     int
	LastProgressAt  Microseconds
	RetriesInWindow int
}
