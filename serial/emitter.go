package serial

import (
	"github.com/kocherga-go/kocherga/crc"
	"github.com/kocherga-go/kocherga/node"
)

// ByteSink is the transmit half of a serial port: enqueue one byte without
// blocking, reporting false on backpressure (no free space in the TX
// queue). This mirrors ISerialPort.send in the original implementation.
type ByteSink interface {
	Send(b byte) bool
}

// Emit serializes tr onto sink without intermediate buffering: every byte
// produced is escaped and sent as soon as it is known, and the whole
// operation aborts (returning false) at the first byte sink refuses. A
// caller that gets false back must treat the frame as not sent; there is
// no partial-frame retry, matching spec §4.5's stop-on-backpressure rule.
func Emit(sink ByteSink, meta node.Metadata, payload []byte) bool {
	crcAccum := crc.NewCRC32C()
	out := func(b byte) bool {
		crcAccum.AddByte(b)
		if b == FrameDelimiter || b == EscapePrefix {
			return sink.Send(EscapePrefix) && sink.Send(^b)
		}
		return sink.Send(b)
	}
	out16 := func(v uint16) bool {
		return out(byte(v)) && out(byte(v>>8))
	}

	ok := sink.Send(FrameDelimiter) &&
		out(FrameFormatVersion) &&
		out(meta.Priority) &&
		out16(meta.Source) &&
		out16(meta.Destination) &&
		out16(meta.DataSpec)

	for i := 0; i < 8; i++ { // Reserved field, always zero on emit.
		ok = ok && out(0)
	}

	transferID := meta.TransferID
	for i := 0; i < 8; i++ {
		ok = ok && out(byte(transferID))
		transferID >>= 8
	}

	for _, b := range frameIndexEOTReference {
		ok = ok && out(b)
	}

	headerCRC := crcAccum.Bytes()
	for _, b := range headerCRC {
		ok = ok && out(b)
	}

	// The header CRC has been sent; start a fresh accumulator over the
	// payload, mirroring the parser's own reuse-then-reset of a single
	// register across header and payload.
	crcAccum = crc.NewCRC32C()
	for _, b := range payload {
		ok = ok && out(b)
	}

	payloadCRC := crcAccum.Bytes()
	for _, b := range payloadCRC {
		ok = ok && out(b)
	}

	return ok && sink.Send(FrameDelimiter)
}
