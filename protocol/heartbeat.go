package protocol

import "encoding/binary"

// Heartbeat is the periodic node-status broadcast the reactor publishes
// at 1 Hz (spec §4.6): mode, health, uptime, and the vendor-specific
// status code.
type Heartbeat struct {
	UptimeSeconds uint32
	Health        uint8
	Mode          uint8
	VSSC          uint8
}

// HeartbeatSize is the fixed encoded size.
const HeartbeatSize = 4 + 1 + 1 + 1

// EncodeHeartbeat writes hb into buf and returns the number of bytes
// written.
func EncodeHeartbeat(buf []byte, hb Heartbeat) int {
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], hb.UptimeSeconds)
	off += 4
	buf[off] = hb.Health
	off++
	buf[off] = hb.Mode
	off++
	buf[off] = hb.VSSC
	off++
	return off
}

// DecodeHeartbeat is the inverse of EncodeHeartbeat.
func DecodeHeartbeat(payload []byte) (Heartbeat, error) {
	if len(payload) < HeartbeatSize {
		return Heartbeat{}, &TruncatedError{Service: "Heartbeat", Want: HeartbeatSize, Got: len(payload)}
	}
	return Heartbeat{
		UptimeSeconds: binary.LittleEndian.Uint32(payload[0:4]),
		Health:        payload[4],
		Mode:          payload[5],
		VSSC:          payload[6],
	}, nil
}
