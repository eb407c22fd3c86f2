package serial

import "github.com/kocherga-go/kocherga/node"

// MaxSerializedRepresentationSize bounds both the parser's payload buffer
// and the reactor's response scratch buffer. It must be large enough to
// hold the largest service response the reactor ever produces; spec §6
// leaves the exact value to the integrator, but 313 bytes (the largest
// File.Read response payload used by the reference services) is a safe
// default for a bootloader that only ever speaks GetInfo, ExecuteCommand,
// and File.Read.
const MaxSerializedRepresentationSize = 313

// MaxBytesToProcessPerPoll bounds how many RX bytes a single Poll call
// consumes, so that one Node sharing a cooperative scheduler with others
// cannot starve them. Three times the largest frame's serialized size is
// enough for the parser to always make progress on at least one full frame
// per poll even if the frame straddles a poll boundary.
const MaxBytesToProcessPerPoll = MaxSerializedRepresentationSize * 3

// ByteSource is the receive half of a serial port: dequeue a single byte
// without blocking, if one is available.
type ByteSource interface {
	Receive() (b byte, ok bool)
}

// Port is the platform-specific bridge a SerialNode drives: the host
// implements buffered, non-blocking access to the physical UART (or
// equivalent) RX/TX queues. It is the Go analogue of ISerialPort.
type Port interface {
	ByteSource
	ByteSink
}

type pendingRequest struct {
	serverNodeID uint16
	serviceID    uint16
	transferID   uint64
}

// SerialNode implements node.Node over the UAVCAN/serial wire format
// (spec §4.5), driving a Port through a Parser on receive and Emit on
// send. A node with no LocalNodeID assigned is anonymous: SendRequest and
// PublishMessage both refuse to send, matching spec §3's rule that an
// anonymous node never originates a request or a message of its own.
type SerialNode struct {
	port   Port
	parser *Parser

	localNodeID *uint16
	pending     *pendingRequest

	responseBuf []byte
}

// NewSerialNode returns a SerialNode with no local node ID assigned
// (anonymous) and a parser sized for MaxSerializedRepresentationSize.
func NewSerialNode(port Port) *SerialNode {
	return &SerialNode{
		port:        port,
		parser:      NewParser(MaxSerializedRepresentationSize),
		responseBuf: make([]byte, MaxSerializedRepresentationSize),
	}
}

// SetLocalNodeID assigns (or, passing nil, clears) this node's identity.
// The host calls this once a node ID becomes known by whatever
// allocation mechanism the integrator uses; the wire codec itself does
// not implement node ID allocation.
func (n *SerialNode) SetLocalNodeID(id *uint16) { n.localNodeID = id }

// LocalNodeID reports this node's current identity, or nil if anonymous.
func (n *SerialNode) LocalNodeID() *uint16 { return n.localNodeID }

// Reset clears the frame parser's state. Call this when the underlying
// communication channel has been reinitialized (for example, after a UART
// framing error that the host detects out of band).
func (n *SerialNode) Reset() { n.parser = NewParser(MaxSerializedRepresentationSize) }

// Poll implements node.Node.
func (n *SerialNode) Poll(reactor node.Reactor, uptime node.Microseconds) {
	for i := 0; i < MaxBytesToProcessPerPoll; i++ {
		b, ok := n.port.Receive()
		if !ok {
			break
		}
		if tr, ok := n.parser.Update(b); ok {
			n.processReceivedTransfer(reactor, tr)
		}
	}
}

func (n *SerialNode) processReceivedTransfer(reactor node.Reactor, tr node.Transfer) {
	if respID, isResp := tr.Meta.IsResponse(); isResp {
		n.processResponse(reactor, tr, respID)
		return
	}
	if reqID, isReq := tr.Meta.IsRequest(); isReq {
		n.processRequest(reactor, tr, reqID)
	}
}

func (n *SerialNode) processResponse(reactor node.Reactor, tr node.Transfer, respID uint16) {
	if n.pending == nil || n.localNodeID == nil {
		return
	}
	p := n.pending
	match := respID == p.serviceID &&
		tr.Meta.Source == p.serverNodeID &&
		tr.Meta.Destination == *n.localNodeID &&
		tr.Meta.TransferID == p.transferID
	if !match {
		return
	}
	reactor.ProcessResponse(tr.Payload)
	n.pending = nil
}

func (n *SerialNode) processRequest(reactor node.Reactor, tr node.Transfer, reqID uint16) {
	if n.localNodeID == nil || tr.Meta.Destination != *n.localNodeID {
		return
	}
	size, ok := reactor.ProcessRequest(reqID, tr.Meta.Source, tr.Payload, n.responseBuf)
	if !ok {
		return
	}
	meta := node.Metadata{
		Priority:    tr.Meta.Priority,
		Source:      *n.localNodeID,
		Destination: tr.Meta.Source,
		DataSpec:    reqID | node.DataSpecResponseMask,
		TransferID:  tr.Meta.TransferID,
	}
	_ = Emit(n.port, meta, n.responseBuf[:size])
}

// SendRequest implements node.Node. It refuses if this node is anonymous
// or already has a request outstanding; spec §4.4 allows only one
// in-flight request per node.
func (n *SerialNode) SendRequest(serviceID uint16, serverNodeID uint16, transferID uint64, payload []byte) bool {
	if n.localNodeID == nil || n.pending != nil {
		return false
	}
	meta := node.Metadata{
		Source:      *n.localNodeID,
		Destination: serverNodeID,
		DataSpec:    serviceID | node.DataSpecRequestMask,
		TransferID:  transferID,
	}
	if !Emit(n.port, meta, payload) {
		return false
	}
	n.pending = &pendingRequest{
		serverNodeID: serverNodeID,
		serviceID:    serviceID,
		transferID:   transferID,
	}
	return true
}

// CancelRequest implements node.Node.
func (n *SerialNode) CancelRequest() { n.pending = nil }

// PublishMessage implements node.Node.
func (n *SerialNode) PublishMessage(subjectID uint16, transferID uint64, payload []byte) bool {
	if n.localNodeID == nil {
		return false
	}
	meta := node.Metadata{
		Source:     *n.localNodeID,
		DataSpec:   subjectID,
		TransferID: transferID,
	}
	return Emit(n.port, meta, payload)
}
