// Package protocol implements wire encoding for the three node-protocol
// services the bootloader reactor exposes or consumes (spec §4.6) and the
// periodic heartbeat it publishes: GetInfo, ExecuteCommand, File.Read, and
// Heartbeat.
//
// Each service has a request and a response type with Encode/Decode pairs.
// Encoding writes into a caller-owned buffer and never allocates; Decode
// does, since it only ever runs against a payload a transport has already
// buffered and is never on the per-byte hot path the serial codec is.
//
// # Services
//
//	GetInfo         – query identity and software/hardware version
//	ExecuteCommand  – BeginSoftwareUpdate, EmergencyStop, FactoryReset, Restart
//	File.Read       – pull loop used to fetch the new image during an update
//
// # Wire Conventions
//
// All multi-byte integers are little-endian, matching the serial frame
// header (spec §4.5) and the AppInfo descriptor (spec §3). Variable-length
// byte strings (paths, names) are prefixed with a single length byte, so
// the maximum representable length is 255 — comfortably above any path or
// name the reference services exchange.
package protocol
