// Package statemachine implements the bootloader's top-level policy (spec
// §4.7): which of the five states the device is in, what triggers each
// transition, and what gets persisted across a reset. Bootloader is the
// "construct once, poll forever" object spec §6 describes as the public
// core: it owns the reactor, the image writer, and the registered
// transports, and it is the only thing in this module that is allowed to
// decide ReadyToBoot.
package statemachine
