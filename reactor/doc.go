// Package reactor implements the bootloader reactor (spec §4.6): the
// transport-agnostic dispatcher that answers GetInfo and ExecuteCommand
// requests, drives the File.Read pull loop that fetches a new image during
// an update, and publishes the 1 Hz node heartbeat.
//
// Reactor owns no policy about which bootloader state permits which
// command — that decision belongs to the caller (the statemachine
// package), supplied as a CommandHandler. Reactor only owns mechanism:
// wire dispatch, pull-loop timing and retry, and the single outstanding
// request per node that node.Node requires.
package reactor
