package serial

import (
	"github.com/kocherga-go/kocherga/crc"
	"github.com/kocherga-go/kocherga/node"
)

// parserState tracks where Parser.Update is within a frame.
type parserState int

const (
	stateIdle parserState = iota
	stateInHeader
	stateInPayload
)

// Parser is a streaming UAVCAN/serial frame decoder (spec §4.5). Feed it
// one byte at a time with Update; when a byte completes a syntactically
// and CRC-valid frame, Update returns the decoded Transfer.
//
// The returned Transfer's Payload aliases Parser's own internal buffer.
// Header bytes are decoded into the metadata, not the buffer, so that
// memory is only rewritten once the next frame's payload bytes arrive.
// The guaranteed lifetime is narrower: the payload is valid across the
// next call to Update, not beyond the one after that. Callers that need
// the payload to outlive two more calls to Update must copy it first.
//
// Parser allocates nothing after construction; MaxPayloadSize is fixed
// for the lifetime of the Parser.
type Parser struct {
	maxPayloadSize int
	buf            []byte // length MaxPayloadSize + CRCSize

	state    parserState
	inside   bool
	escaping bool
	offset   int
	crcAccum crc.CRC32C
	meta     node.Metadata

	// headerBad is set, together with inside=false, as soon as any
	// header-field check fails, mirroring the original's "inside_ = false"
	// abort-in-place behavior. Update then drops every byte up to the next
	// delimiter, which resets both flags.
	headerBad bool
}

// NewParser returns a Parser whose payload buffer can hold up to
// maxPayloadSize bytes plus the trailing payload CRC.
func NewParser(maxPayloadSize int) *Parser {
	return &Parser{
		maxPayloadSize: maxPayloadSize,
		buf:            make([]byte, maxPayloadSize+CRCSize),
	}
}

// Update feeds one byte of the incoming stream into the parser. If the
// byte completes a valid frame, the decoded Transfer is returned.
func (p *Parser) Update(b byte) (node.Transfer, bool) {
	if b == FrameDelimiter {
		var out node.Transfer
		var ok bool
		if p.inside && !p.headerBad && p.offset >= HeaderSize+CRCSize && p.crcAccum.IsResidueCorrect() {
			out = node.Transfer{
				Meta:    p.meta,
				Payload: p.buf[:p.offset-HeaderSize-CRCSize],
			}
			ok = true
		}
		p.reset()
		p.inside = true
		return out, ok
	}

	if !p.inside {
		return node.Transfer{}, false // Not inside a frame: drop the byte.
	}

	if b == EscapePrefix {
		if p.escaping {
			// A second raw escape prefix cannot occur in a
			// well-formed stream; abort this frame in place.
			p.inside = false
		} else {
			p.escaping = true
		}
		return node.Transfer{}, false
	}

	bt := b
	if p.escaping {
		bt = ^b
	}
	p.escaping = false

	p.crcAccum.AddByte(bt)

	if p.offset < HeaderSize {
		p.acceptHeaderByte(bt)
	} else if p.offset-HeaderSize < len(p.buf) {
		// A frame may legally fill the payload buffer right up to its
		// last byte (MaxPayloadSize of real payload plus the trailing
		// CRC) and still complete on the next delimiter: filling the
		// buffer is not itself an overflow, only writing past it is.
		p.buf[p.offset-HeaderSize] = bt
	} else {
		// One more byte than the buffer can hold: abort the frame.
		p.inside = false
	}

	p.offset++
	return node.Transfer{}, false
}

func (p *Parser) reset() {
	p.offset = 0
	p.escaping = false
	p.inside = false
	p.headerBad = false
	p.crcAccum = crc.NewCRC32C()
	p.meta = node.Metadata{}
}

// acceptHeaderByte folds byte bt, already known to be at p.offset < HeaderSize,
// into the in-progress header fields, aborting the frame in place (setting
// inside=false / headerBad=true) on any constraint violation rather than
// returning early from this call; once inside is false, Update drops the
// rest of the frame up to the next delimiter.
func (p *Parser) acceptHeaderByte(bt byte) {
	switch {
	case p.offset == offVersion:
		if bt != FrameFormatVersion {
			p.inside = false
			p.headerBad = true
		}
	case p.offset == offPriority:
		p.meta.Priority = bt
	case p.offset >= offSource && p.offset < offSource+2:
		shiftIn16(&p.meta.Source, bt, p.offset-offSource)
	case p.offset >= offDestination && p.offset < offDestination+2:
		shiftIn16(&p.meta.Destination, bt, p.offset-offDestination)
	case p.offset >= offDataSpec && p.offset < offDataSpec+2:
		shiftIn16(&p.meta.DataSpec, bt, p.offset-offDataSpec)
	case p.offset >= offTransferID && p.offset < offTransferID+8:
		shiftIn64(&p.meta.TransferID, bt, p.offset-offTransferID)
	}

	if p.offset >= offFrameIndex && p.offset < offFrameIndex+4 {
		if frameIndexEOTReference[p.offset-offFrameIndex] != bt {
			p.inside = false
			p.headerBad = true
		}
	}

	if p.offset == HeaderSize-1 {
		if !p.crcAccum.IsResidueCorrect() {
			p.inside = false
			p.headerBad = true
		}
		// The same accumulator continues over the payload with a
		// fresh initial value; this single-accumulator reuse across
		// header and payload mirrors the original C++ implementation
		// rather than allocating two independent CRC objects.
		p.crcAccum = crc.NewCRC32C()
	}
}

func shiftIn16(field *uint16, bt byte, byteIndex int) {
	*field |= uint16(bt) << (8 * byteIndex)
}

func shiftIn64(field *uint64, bt byte, byteIndex int) {
	*field |= uint64(bt) << (8 * byteIndex)
}
