package reactor

import (
	"errors"
	"testing"

	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/protocol"
)

// fakeNode is an in-memory node.Node double that hands GetInfo/
// ExecuteCommand requests and File.Read responses straight to the
// reactor, bypassing any wire encoding, so these tests exercise
// reactor logic in isolation from the serial codec.
type fakeNode struct {
	localID *uint16
	pending bool

	// queued requests/responses the test wants delivered on the next Poll.
	deliverRequest  *node.Transfer
	deliverResponse []byte
	lastResponse    []byte
	lastResponseOK  bool

	sent struct {
		serviceID    uint16
		serverNodeID uint16
		transferID   uint64
		payload      []byte
		ok           bool
	}
	published struct {
		subjectID uint16
		payload   []byte
		ok        bool
	}
}

func (f *fakeNode) Poll(reactor node.Reactor, uptime node.Microseconds) {
	if f.deliverRequest != nil {
		serviceID, _ := f.deliverRequest.Meta.IsRequest()
		buf := make([]byte, 512)
		n, ok := reactor.ProcessRequest(serviceID, f.deliverRequest.Meta.Source, f.deliverRequest.Payload, buf)
		f.lastResponse = append([]byte(nil), buf[:n]...)
		f.lastResponseOK = ok
		f.deliverRequest = nil
	}
	if f.deliverResponse != nil {
		reactor.ProcessResponse(f.deliverResponse)
		f.deliverResponse = nil
		f.pending = false
	}
}

func (f *fakeNode) SendRequest(serviceID uint16, serverNodeID uint16, transferID uint64, payload []byte) bool {
	if f.pending {
		return false
	}
	f.pending = true
	f.sent.serviceID = serviceID
	f.sent.serverNodeID = serverNodeID
	f.sent.transferID = transferID
	f.sent.payload = append([]byte(nil), payload...)
	f.sent.ok = true
	return true
}

func (f *fakeNode) CancelRequest() { f.pending = false }

func (f *fakeNode) PublishMessage(subjectID uint16, transferID uint64, payload []byte) bool {
	f.published.subjectID = subjectID
	f.published.payload = append([]byte(nil), payload...)
	f.published.ok = true
	return true
}

type fakeWriter struct {
	began  bool
	data   []byte
	ended  bool
	failAt int // fail the write that would push len(data) past failAt; 0 = never
}

func (w *fakeWriter) BeginWrite() { w.began = true; w.data = nil; w.ended = false }
func (w *fakeWriter) Write(data []byte) error {
	if w.failAt > 0 && len(w.data)+len(data) > w.failAt {
		return errors.New("fakeWriter: simulated write failure")
	}
	w.data = append(w.data, data...)
	return nil
}
func (w *fakeWriter) EndWrite() (int, error) { w.ended = true; return len(w.data), nil }

func TestReactorAnswersGetInfo(t *testing.T) {
	writer := &fakeWriter{}
	r := New(Config{
		Hardware: HardwareInfo{Name: "test-node", VersionMajor: 1, VersionMinor: 0},
		Writer:   writer,
	})

	fn := &fakeNode{}
	r.AddNode(fn)
	r.SetAppInfo(appinfo.AppInfo{VersionMajor: 2, VersionMinor: 1, ImageCRC: 0xAA}, true)

	req := node.Transfer{
		Meta: node.Metadata{
			Source:      7,
			Destination: 1,
			DataSpec:    protocol.ServiceGetInfo | node.DataSpecRequestMask,
		},
	}
	fn.deliverRequest = &req
	r.Poll(0)

	if !fn.lastResponseOK {
		t.Fatal("expected GetInfo to produce a response")
	}
	resp, err := protocol.DecodeGetInfoResponse(fn.lastResponse)
	if err != nil {
		t.Fatalf("DecodeGetInfoResponse: %v", err)
	}
	if resp.SoftwareVersionMajor != 2 || resp.SoftwareVersionMinor != 1 || !resp.SoftwareCRCSet {
		t.Errorf("unexpected software version in response: %+v", resp)
	}
	if resp.Name != "test-node" {
		t.Errorf("Name = %q, want %q", resp.Name, "test-node")
	}
}

func TestReactorFetchLoopCompletesOnShortRead(t *testing.T) {
	writer := &fakeWriter{}
	var result FetchResult
	var gotResult bool
	r := New(Config{
		Hardware:        HardwareInfo{Name: "n"},
		Writer:          writer,
		ReadChunkSize:   4,
		OnFetchComplete: func(fr FetchResult) { result = fr; gotResult = true },
	})
	fn := &fakeNode{}
	r.AddNode(fn)

	if !r.BeginFetch(0, 9, "/app.bin") {
		t.Fatal("BeginFetch failed")
	}
	if !fn.pending {
		t.Fatal("expected an outstanding File.Read request")
	}

	// First response: full chunk, not yet EOF.
	buf := make([]byte, protocol.FileReadResponseFixedSize+4)
	protocol.EncodeFileReadResponse(buf, protocol.FileReadResponse{Data: []byte("abcd")})
	fn.deliverResponse = buf
	fn.pending = true
	r.Poll(1000)

	if !fn.pending {
		t.Fatal("expected a follow-up File.Read request after a full chunk")
	}

	// Second response: short read signals EOF.
	buf2 := make([]byte, protocol.FileReadResponseFixedSize+2)
	protocol.EncodeFileReadResponse(buf2, protocol.FileReadResponse{Data: []byte("ef")})
	fn.deliverResponse = buf2
	r.Poll(2000)

	if !gotResult {
		t.Fatal("expected OnFetchComplete to fire")
	}
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if string(writer.data) != "abcdef" {
		t.Errorf("writer received %q, want %q", writer.data, "abcdef")
	}
	if !writer.ended {
		t.Error("expected EndWrite to have been called")
	}
	if r.FetchActive() {
		t.Error("fetch session should be cleared after completion")
	}
}

func TestReactorFetchLoopTimesOutAndRetries(t *testing.T) {
	writer := &fakeWriter{}
	var result FetchResult
	var gotResult bool
	r := New(Config{
		Hardware:           HardwareInfo{Name: "n"},
		Writer:             writer,
		ReadChunkSize:      4,
		StallTimeout:       100,
		MaxRetriesPerStall: 2,
		OnFetchComplete:    func(fr FetchResult) { result = fr; gotResult = true },
	})
	fn := &fakeNode{}
	r.AddNode(fn)

	r.BeginFetch(0, 9, "/app.bin")

	// Never deliver a response; advance past the stall window repeatedly.
	r.Poll(150) // retry 1
	r.Poll(300) // retry 2
	r.Poll(450) // retry budget exhausted

	if !gotResult {
		t.Fatal("expected OnFetchComplete to fire after retry exhaustion")
	}
	if result.Err == nil {
		t.Error("expected a stall error")
	}
}

func TestReactorPublishesHeartbeat(t *testing.T) {
	writer := &fakeWriter{}
	r := New(Config{Hardware: HardwareInfo{Name: "n"}, Writer: writer, HeartbeatInterval: 1000})
	fn := &fakeNode{}
	r.AddNode(fn)

	r.Poll(0)
	if !fn.published.ok || fn.published.subjectID != protocol.SubjectHeartbeat {
		t.Fatal("expected a heartbeat publish on the first poll")
	}

	fn.published.ok = false
	r.Poll(500) // inside the interval: no publish yet
	if fn.published.ok {
		t.Error("did not expect a second heartbeat before the interval elapsed")
	}

	r.Poll(1500)
	if !fn.published.ok {
		t.Error("expected a heartbeat once the interval elapsed")
	}
}
