package rom

import (
	"errors"
	"reflect"
	"testing"
)

type recordingBackend struct {
	writes  [][]byte
	offsets []int
	failAt  int // -1 means never fail
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{failAt: -1}
}

func (b *recordingBackend) Write(off int, data []byte) error {
	if len(b.writes) == b.failAt {
		return errors.New("simulated flash failure")
	}
	cp := append([]byte(nil), data...)
	b.writes = append(b.writes, cp)
	b.offsets = append(b.offsets, off)
	return nil
}

func TestWriteFlushesFullBlocksOnly(t *testing.T) {
	backend := newRecordingBackend()
	w := New(backend, 4)
	w.BeginWrite()

	if err := w.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(backend.writes) != 0 {
		t.Fatalf("a partial block should not be flushed yet, got %d writes", len(backend.writes))
	}

	if err := w.Write([]byte{4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(backend.writes) != 1 {
		t.Fatalf("one full block should have flushed, got %d writes", len(backend.writes))
	}
	if !reflect.DeepEqual(backend.writes[0], []byte{1, 2, 3, 4}) {
		t.Errorf("first flushed block = %v, want [1 2 3 4]", backend.writes[0])
	}
	if backend.offsets[0] != 0 {
		t.Errorf("first flush offset = %d, want 0", backend.offsets[0])
	}
}

func TestEndWritePadsPartialBlock(t *testing.T) {
	backend := newRecordingBackend()
	w := New(backend, 4)
	w.BeginWrite()

	_ = w.Write([]byte{1, 2, 3})
	total, err := w.EndWrite()
	if err != nil {
		t.Fatalf("EndWrite: %v", err)
	}
	if total != 3 {
		t.Errorf("BytesWritten total = %d, want 3", total)
	}
	if len(backend.writes) != 1 {
		t.Fatalf("EndWrite should flush the padded partial block, got %d writes", len(backend.writes))
	}
	want := []byte{1, 2, 3, PadByte}
	if !reflect.DeepEqual(backend.writes[0], want) {
		t.Errorf("padded block = %v, want %v", backend.writes[0], want)
	}
}

func TestZeroLengthWriteIsANoop(t *testing.T) {
	backend := newRecordingBackend()
	w := New(backend, 4)
	w.BeginWrite()

	if err := w.Write(nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
	if err := w.Write([]byte{}); err != nil {
		t.Fatalf("Write([]byte{}): %v", err)
	}
	if len(backend.writes) != 0 {
		t.Errorf("zero-length writes should not flush anything, got %d writes", len(backend.writes))
	}
}

func TestOffsetAdvancesAcrossMultipleBlocks(t *testing.T) {
	backend := newRecordingBackend()
	w := New(backend, 4)
	w.BeginWrite()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	total, err := w.EndWrite()
	if err != nil {
		t.Fatalf("EndWrite: %v", err)
	}
	if total != len(data) {
		t.Errorf("total = %d, want %d", total, len(data))
	}
	wantOffsets := []int{0, 4, 8}
	if !reflect.DeepEqual(backend.offsets, wantOffsets) {
		t.Errorf("offsets = %v, want %v", backend.offsets, wantOffsets)
	}
}

func TestWriteFailurePropagatesAsWriteFailedError(t *testing.T) {
	backend := newRecordingBackend()
	backend.failAt = 0
	w := New(backend, 4)
	w.BeginWrite()

	err := w.Write([]byte{1, 2, 3, 4})
	if err == nil {
		t.Fatal("expected a write failure")
	}
	var wfe *WriteFailedError
	if !errors.As(err, &wfe) {
		t.Fatalf("error = %v, want *WriteFailedError", err)
	}
	if wfe.Offset != 0 {
		t.Errorf("WriteFailedError.Offset = %d, want 0", wfe.Offset)
	}
}

func TestBeginWriteResetsSession(t *testing.T) {
	backend := newRecordingBackend()
	w := New(backend, 4)
	w.BeginWrite()
	_ = w.Write([]byte{1, 2, 3, 4})
	_, _ = w.EndWrite()

	w.BeginWrite()
	if w.BytesWritten() != 0 {
		t.Errorf("BytesWritten after BeginWrite = %d, want 0", w.BytesWritten())
	}
	_ = w.Write([]byte{9, 9, 9, 9})
	if backend.offsets[len(backend.offsets)-1] != 0 {
		t.Errorf("second session should restart offsets at 0, got %d", backend.offsets[len(backend.offsets)-1])
	}
}

func TestInvalidateDescriptorZeroesSignature(t *testing.T) {
	backend := newRecordingBackend()
	if err := InvalidateDescriptor(backend, 1024, 8); err != nil {
		t.Fatalf("InvalidateDescriptor: %v", err)
	}
	if len(backend.writes) != 1 {
		t.Fatalf("InvalidateDescriptor should issue exactly one write, got %d", len(backend.writes))
	}
	if backend.offsets[0] != 1024 {
		t.Errorf("offset = %d, want 1024", backend.offsets[0])
	}
	for _, b := range backend.writes[0] {
		if b != 0 {
			t.Errorf("InvalidateDescriptor must write zero bytes, got %v", backend.writes[0])
			break
		}
	}
}
