package statemachine

import (
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/reactor"
)

// ROM is the combined read/write view of program memory the state machine
// needs: appinfo.Locate/Verify read it, rom.Writer and InvalidateDescriptor
// write it. A single host-supplied ROMBackend (spec §6) normally satisfies
// both halves.
type ROM interface {
	ReadAt(off int, dst []byte) error
	Len() int
	Write(off int, data []byte) error
}

// ResetRequest is the host's platform-reset hook (spec §6's ResetRequest
// interface). Request may not return: a real implementation triggers a
// watchdog or CPU reset. The simulator (cmd/kocherga-sim) supplies none,
// so Restart and FactoryReset report failure there.
type ResetRequest interface {
	Request()
}

// Logger is the minimal logging surface the state machine needs, mirrored
// on the teacher's bootloader.Logger so that hostlog.Zerolog, which already
// satisfies that shape, works here unchanged.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// Defaults for Config fields spec §4.7 calls out as "configuration
// parameters with documented defaults."
const (
	DefaultBootDelay         node.Microseconds = 2_000_000 // 2 s, per scenario 1
	DefaultReadChunkSize                       = 256
	DefaultStallTimeout      node.Microseconds = 1_000_000
	DefaultMaxRetries                          = 3
	DefaultHeartbeatInterval node.Microseconds = 1_000_000
)

// Config bundles everything Bootloader needs at construction. It plays the
// role the teacher's Config/Option pair plays for Programmer: a plain
// struct host code fills in directly, since the core has no functional
// bodies worth hiding behind an Option constructor (spec §5: statically
// configured at construction, no runtime reconfiguration).
type Config struct {
	// ROM is the image region this bootloader boots from and writes
	// updates to. Required.
	ROM ROM

	// WriteBlockSize is the host's minimum flash program unit, passed to
	// rom.New. Required, must be positive.
	WriteBlockSize int

	// VolatileRegion, if non-nil, must be exactly
	// volatile.StorageSize[resumeRecord]() bytes; it backs the cross-reset
	// "resume this update" channel. Nil disables that feature: every boot
	// after a reset starts from NoAppToBoot/BootDelay based on the
	// resident image alone.
	VolatileRegion []byte

	// Reset is the host's platform-reset hook. Required only if the host
	// wants Restart/FactoryReset to actually take effect; a nil Reset
	// makes those commands report failure instead of resetting.
	Reset ResetRequest

	// Hardware answers the hardware-identity half of GetInfo (spec §4.6
	// supplemental feature 7); the AppInfo-derived half comes from the
	// resident image.
	Hardware reactor.HardwareInfo

	// BootDelayDuration is how long BootDelay waits before ReadyToBoot,
	// in the same Microseconds unit Poll's uptime argument uses. Zero
	// means DefaultBootDelay.
	BootDelayDuration node.Microseconds

	// ReadChunkSize, StallTimeout, MaxRetriesPerStall tune the reactor's
	// File.Read pull loop; zero means the reactor's own defaults.
	ReadChunkSize      int
	StallTimeout       node.Microseconds
	MaxRetriesPerStall int
	HeartbeatInterval  node.Microseconds

	Logger Logger
}

func (c Config) withDefaults() Config {
	if c.BootDelayDuration == 0 {
		c.BootDelayDuration = DefaultBootDelay
	}
	return c
}
