// Package fixture builds synthetic firmware images for tests and the
// simulator: a byte blob of a given size with a correctly CRC'd AppInfo
// descriptor embedded at a chosen offset, plus an in-memory ROMBackend to
// host it on.
//
// This plays the role the teacher's cyacd package played — assembling a
// structured firmware blob ahead of programming it — generalized from
// parsing a Cypress .cyacd row file to building the node-protocol image
// this module's state machine and reactor actually consume.
package fixture
