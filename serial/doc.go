// Package serial implements the UAVCAN/serial transport (spec §4.5): a
// byte-stuffed framing codec (Parser, Emit) and SerialNode, which wires
// that codec into the node.Node capability set the reactor drives.
//
// Frames are delimited by 0x9E and escaped with 0x8E; a 32-byte header
// carries transfer metadata protected by its own CRC-32C, followed by the
// payload and a second CRC-32C over the payload alone. Only single-frame
// transfers are accepted: the 4-byte FrameIndex/EOT field must always read
// {0, 0, 0, 0x80}, matching spec Open Question (b)'s resolution to drop
// multi-frame support entirely rather than half-implement it.
package serial
