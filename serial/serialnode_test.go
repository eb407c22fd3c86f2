package serial

import (
	"bytes"
	"testing"

	"github.com/kocherga-go/kocherga/node"
)

// loopbackPort is a Port backed by two in-memory byte queues: a transmit
// queue (what the node under test sends) and a receive queue (bytes
// queued for the node under test to receive), letting tests drive both
// directions of a SerialNode without a real UART.
type loopbackPort struct {
	tx      []byte
	rx      []byte
	rxPos   int
	refuses int
}

func (p *loopbackPort) Send(b byte) bool {
	if p.refuses > 0 && len(p.tx) >= p.refuses {
		return false
	}
	p.tx = append(p.tx, b)
	return true
}

func (p *loopbackPort) Receive() (byte, bool) {
	if p.rxPos >= len(p.rx) {
		return 0, false
	}
	b := p.rx[p.rxPos]
	p.rxPos++
	return b, true
}

func (p *loopbackPort) queueFrame(meta node.Metadata, payload []byte) {
	inbound := &loopbackPort{}
	Emit(inbound, meta, payload)
	p.rx = append(p.rx, inbound.tx...)
}

type recordingReactor struct {
	requests       []requestCall
	responses      [][]byte
	respondPayload []byte
	respondOK      bool
}

type requestCall struct {
	serviceID, sourceNodeID uint16
	payload                 []byte
}

func (r *recordingReactor) ProcessRequest(serviceID, sourceNodeID uint16, payload []byte, buf []byte) (int, bool) {
	r.requests = append(r.requests, requestCall{serviceID, sourceNodeID, append([]byte(nil), payload...)})
	if !r.respondOK {
		return 0, false
	}
	n := copy(buf, r.respondPayload)
	return n, true
}

func (r *recordingReactor) ProcessResponse(payload []byte) {
	r.responses = append(r.responses, append([]byte(nil), payload...))
}

func withLocalID(id uint16) *uint16 { return &id }

func TestSerialNodeAnonymousNodeCannotSendRequestOrPublish(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)

	if n.SendRequest(1, 2, 3, nil) {
		t.Error("an anonymous node must not be able to send a request")
	}
	if n.PublishMessage(1, 2, nil) {
		t.Error("an anonymous node must not be able to publish")
	}
	if len(port.tx) != 0 {
		t.Errorf("anonymous node sent bytes: %v", port.tx)
	}
}

func TestSerialNodeAssignedNodeCanSendRequest(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))

	if !n.SendRequest(5, 0x0020, 42, []byte("ping")) {
		t.Fatal("SendRequest failed for a node with an assigned id")
	}
	if len(port.tx) == 0 {
		t.Error("SendRequest did not emit any bytes")
	}
}

func TestSerialNodeDeliversRequestToReactorAndSendsResponse(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))

	reqMeta := node.Metadata{
		Source:      0x0020,
		Destination: 0x0010,
		DataSpec:    7 | node.DataSpecRequestMask,
		TransferID:  99,
	}
	port.queueFrame(reqMeta, []byte("do thing"))

	reactor := &recordingReactor{respondOK: true, respondPayload: []byte("done")}
	n.Poll(reactor, 0)

	if len(reactor.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(reactor.requests))
	}
	got := reactor.requests[0]
	if got.serviceID != 7 || got.sourceNodeID != 0x0020 || string(got.payload) != "do thing" {
		t.Errorf("request = %+v, unexpected", got)
	}

	if len(port.tx) == 0 {
		t.Fatal("no response was transmitted")
	}
	p := NewParser(64)
	var respTr node.Transfer
	var ok bool
	for _, b := range port.tx {
		if tr, done := p.Update(b); done {
			respTr, ok = tr, true
		}
	}
	if !ok {
		t.Fatal("response frame did not parse")
	}
	if string(respTr.Payload) != "done" {
		t.Errorf("response payload = %q, want %q", respTr.Payload, "done")
	}
	if respTr.Meta.Destination != 0x0020 || respTr.Meta.Source != 0x0010 {
		t.Errorf("response meta = %+v", respTr.Meta)
	}
}

func TestSerialNodeRequestToOtherDestinationIsIgnored(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))

	reqMeta := node.Metadata{Source: 0x0020, Destination: 0x00FF, DataSpec: 7 | node.DataSpecRequestMask}
	port.queueFrame(reqMeta, []byte("not for us"))

	reactor := &recordingReactor{respondOK: true, respondPayload: []byte("done")}
	n.Poll(reactor, 0)

	if len(reactor.requests) != 0 {
		t.Errorf("reactor saw a request not addressed to this node: %+v", reactor.requests)
	}
}

func TestSerialNodeMatchesResponseOnAllFourFields(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))
	n.SendRequest(5, 0x0020, 42, []byte("ping"))

	cases := []struct {
		name  string
		meta  node.Metadata
		match bool
	}{
		{"exact match", node.Metadata{Source: 0x0020, Destination: 0x0010, DataSpec: 5 | node.DataSpecResponseMask, TransferID: 42}, true},
		{"wrong service id", node.Metadata{Source: 0x0020, Destination: 0x0010, DataSpec: 6 | node.DataSpecResponseMask, TransferID: 42}, false},
		{"wrong server", node.Metadata{Source: 0x0099, Destination: 0x0010, DataSpec: 5 | node.DataSpecResponseMask, TransferID: 42}, false},
		{"wrong destination", node.Metadata{Source: 0x0020, Destination: 0x0099, DataSpec: 5 | node.DataSpecResponseMask, TransferID: 42}, false},
		{"wrong transfer id", node.Metadata{Source: 0x0020, Destination: 0x0010, DataSpec: 5 | node.DataSpecResponseMask, TransferID: 43}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// Re-issue the request for every case: a matched response
			// clears the pending slot, and the mismatch cases must be
			// rejected on their fields, not on an empty slot.
			n.CancelRequest()
			if !n.SendRequest(5, 0x0020, 42, []byte("ping")) {
				t.Fatal("SendRequest failed")
			}
			port.rx, port.rxPos = nil, 0
			port.queueFrame(c.meta, []byte("pong"))
			reactor := &recordingReactor{}
			n.Poll(reactor, 0)
			got := len(reactor.responses) == 1
			if got != c.match {
				t.Errorf("match = %v, want %v", got, c.match)
			}
		})
	}
}

func TestSerialNodeResponseAfterCancelIsIgnored(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))
	n.SendRequest(5, 0x0020, 42, []byte("ping"))
	n.CancelRequest()

	respMeta := node.Metadata{Source: 0x0020, Destination: 0x0010, DataSpec: 5 | node.DataSpecResponseMask, TransferID: 42}
	port.queueFrame(respMeta, []byte("pong"))

	reactor := &recordingReactor{}
	n.Poll(reactor, 0)
	if len(reactor.responses) != 0 {
		t.Error("a response after CancelRequest must be ignored")
	}
}

func TestSerialNodePublishMessageAndReset(t *testing.T) {
	port := &loopbackPort{}
	n := NewSerialNode(port)
	n.SetLocalNodeID(withLocalID(0x0010))

	if !n.PublishMessage(0x0100, 1, []byte("hb")) {
		t.Fatal("PublishMessage failed")
	}
	if len(port.tx) == 0 {
		t.Error("PublishMessage emitted no bytes")
	}

	before := n.parser
	n.Reset()
	if n.parser == before {
		t.Error("Reset did not replace the parser")
	}
}

func TestSerialNodePollRespectsByteBudget(t *testing.T) {
	port := &loopbackPort{}
	// Fill the rx queue with far more bytes than MaxBytesToProcessPerPoll
	// so a single Poll call cannot possibly drain it all.
	port.rx = bytes.Repeat([]byte{0x00}, MaxBytesToProcessPerPoll*4)

	n := NewSerialNode(port)
	reactor := &recordingReactor{}
	n.Poll(reactor, 0)

	if port.rxPos != MaxBytesToProcessPerPoll {
		t.Errorf("Poll consumed %d bytes, want exactly %d", port.rxPos, MaxBytesToProcessPerPoll)
	}
}
