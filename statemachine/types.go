package statemachine

import "github.com/kocherga-go/kocherga/node"

// State is one of the five bootloader states spec §4.7 defines. The zero
// value, NoAppToBoot, is also Bootloader's state before the entry logic
// runs on the first Poll; GetState called before that reports it.
type State uint8

const (
	NoAppToBoot State = iota
	BootDelay
	BootCancelled
	AppUpgradeInProgress
	ReadyToBoot
)

func (s State) String() string {
	switch s {
	case NoAppToBoot:
		return "NoAppToBoot"
	case BootDelay:
		return "BootDelay"
	case BootCancelled:
		return "BootCancelled"
	case AppUpgradeInProgress:
		return "AppUpgradeInProgress"
	case ReadyToBoot:
		return "ReadyToBoot"
	default:
		return "State(unknown)"
	}
}

// modeHealth returns the (Mode, Health) pair spec §4.7's state table
// assigns to s; the reactor's heartbeat reports these through the
// StateProvider callback.
func (s State) modeHealth() (node.Mode, node.Health) {
	switch s {
	case NoAppToBoot:
		return node.ModeSoftwareUpdate, node.HealthError
	case BootDelay:
		return node.ModeInitialization, node.HealthOk
	case BootCancelled:
		return node.ModeSoftwareUpdate, node.HealthWarning
	case AppUpgradeInProgress:
		return node.ModeSoftwareUpdate, node.HealthOk
	case ReadyToBoot:
		return node.ModeInitialization, node.HealthOk
	default:
		return node.ModeSoftwareUpdate, node.HealthError
	}
}
