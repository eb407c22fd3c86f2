// Command kocherga-sim is a host-side harness for the bootloader core: it
// drives statemachine.Bootloader against an in-memory ROM and a loopback
// serial.SerialNode pair so the end-to-end scenarios spec §8 describes
// (happy boot, cold update) can be watched without real hardware. It is
// not part of the core and is free to depend on cobra, zerolog, uuid, and
// x/term the way the core never can.
package main
