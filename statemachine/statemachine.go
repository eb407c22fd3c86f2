package statemachine

import (
	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/protocol"
	"github.com/kocherga-go/kocherga/reactor"
	"github.com/kocherga-go/kocherga/rom"
	"github.com/kocherga-go/kocherga/volatile"
)

// Bootloader is the public core spec §6 describes: construct once with a
// ROM backend and a node list, then drive it by calling Poll from the
// host's main loop until it reports ReadyToBoot. It owns a reactor.Reactor
// (service dispatch, pull loop, heartbeat) and a rom.Writer, and is the
// only component that decides state transitions.
type Bootloader struct {
	cfg     Config
	reactor *reactor.Reactor
	writer  *rom.Writer

	state        State
	entered      bool
	lastUptime   node.Microseconds
	bootDeadline node.Microseconds

	appInfo appinfo.AppInfo
	haveApp bool

	// updateServerNodeID and updatePath name the source of the most
	// recently started update session; Restart persists them.
	updateServerNodeID uint16
	updatePath         string
}

// New validates cfg and constructs a Bootloader. The entry decision (spec
// §4.7: verify the resident image, or resume a VolatileStorage-recorded
// update) is deferred to the first call to Poll, since it may need to
// start a File.Read session and nodes are only guaranteed registered once
// AddNode has been called, which per spec §6 happens after Construct but
// before the first poll.
func New(cfg Config) (*Bootloader, error) {
	if cfg.ROM == nil || cfg.WriteBlockSize <= 0 {
		return nil, ErrNotConfigured
	}
	cfg = cfg.withDefaults()

	bl := &Bootloader{cfg: cfg}
	bl.writer = rom.New(cfg.ROM, cfg.WriteBlockSize)

	var rlog reactor.Logger
	if cfg.Logger != nil {
		rlog = loggerAdapter{cfg.Logger}
	}
	bl.reactor = reactor.New(reactor.Config{
		Hardware:           cfg.Hardware,
		Writer:             bl.writer,
		HandleCommand:      bl.handleCommand,
		OnFetchComplete:    bl.onFetchComplete,
		State:              bl.reactorState,
		ReadChunkSize:      cfg.ReadChunkSize,
		StallTimeout:       uint64(cfg.StallTimeout),
		MaxRetriesPerStall: cfg.MaxRetriesPerStall,
		HeartbeatInterval:  uint64(cfg.HeartbeatInterval),
		Logger:             rlog,
	})
	return bl, nil
}

// AddNode registers a transport. Must be called before the first Poll.
func (bl *Bootloader) AddNode(n node.Node) { bl.reactor.AddNode(n) }

// Poll advances the state machine and its reactor by one tick. uptime is
// monotonic microseconds since the bootloader started and must never go
// backwards (spec §6's Clock contract). The returned State equals
// ReadyToBoot exactly when the caller should jump to the application;
// any other value means "call Poll again."
func (bl *Bootloader) Poll(uptime node.Microseconds) State {
	bl.lastUptime = uptime
	if !bl.entered {
		bl.enter(uptime)
		bl.entered = true
	}

	bl.reactor.Poll(uint64(uptime))

	if bl.state == BootDelay && uptime >= bl.bootDeadline {
		bl.state = ReadyToBoot
	}
	return bl.state
}

// GetState reports the current state without advancing anything.
func (bl *Bootloader) GetState() State { return bl.state }

// GetAppInfo reports the resident image's descriptor, if one has been
// located and verified. ok is false in NoAppToBoot and, transiently,
// during AppUpgradeInProgress.
func (bl *Bootloader) GetAppInfo() (appinfo.AppInfo, bool) { return bl.appInfo, bl.haveApp }

// enter runs the state machine's entry logic (spec §4.7 "Entry:"): resume
// an in-progress update if VolatileStorage says to, else verify the
// resident image and enter BootDelay or NoAppToBoot accordingly.
func (bl *Bootloader) enter(uptime node.Microseconds) {
	if rec, ok := bl.takeResume(); ok {
		if bl.beginUpdate(uptime, rec.ServerNodeID, rec.path()) {
			return
		}
		// Could not even issue the first read (no node accepted it): fall
		// through to a normal boot attempt rather than wedging in
		// NoAppToBoot forever.
	}

	info, err := appinfo.Locate(bl.cfg.ROM)
	if err != nil {
		bl.state = NoAppToBoot
		bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)
		return
	}
	bl.appInfo, bl.haveApp = info, true
	bl.reactor.SetAppInfo(info, true)
	bl.enterBootDelay(uptime, bl.cfg.BootDelayDuration)
}

func (bl *Bootloader) enterBootDelay(uptime, delay node.Microseconds) {
	bl.state = BootDelay
	bl.bootDeadline = uptime + delay
}

// beginUpdate invalidates the resident descriptor (if one is known) and
// starts a new File.Read pull loop. It returns false if no registered node
// could accept the initial request, in which case the caller is
// responsible for deciding what state to fall back to.
func (bl *Bootloader) beginUpdate(uptime node.Microseconds, serverNodeID uint16, path string) bool {
	if bl.haveApp {
		if err := rom.InvalidateDescriptor(bl.cfg.ROM, bl.appInfo.Offset, len(appinfo.Signature)); err != nil {
			bl.logError("failed to invalidate resident descriptor", "err", err)
			bl.state = NoAppToBoot
			bl.haveApp = false
			bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)
			return true
		}
	}
	bl.haveApp = false
	bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)

	if !bl.reactor.BeginFetch(uint64(uptime), serverNodeID, path) {
		return false
	}
	bl.updateServerNodeID, bl.updatePath = serverNodeID, path
	bl.state = AppUpgradeInProgress
	return true
}

// onFetchComplete implements reactor.FetchCompleteFunc: it is called
// synchronously from within the Poll that finished the pull loop, so
// bl.lastUptime is an accurate "now" even though the callback itself
// carries no timestamp.
func (bl *Bootloader) onFetchComplete(result reactor.FetchResult) {
	if result.Err != nil {
		bl.logWarn("update session failed", "err", result.Err, "bytesWritten", result.BytesWritten)
		bl.state = NoAppToBoot
		bl.haveApp = false
		bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)
		return
	}

	info, err := appinfo.Locate(bl.cfg.ROM)
	if err != nil {
		bl.logWarn("newly written image failed verification", "err", err)
		bl.state = NoAppToBoot
		bl.haveApp = false
		bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)
		return
	}
	bl.appInfo, bl.haveApp = info, true
	bl.reactor.SetAppInfo(info, true)
	// Zero remaining delay: hand off promptly (spec §4.7).
	bl.enterBootDelay(bl.lastUptime, 0)
}

// handleCommand implements reactor.CommandHandler: the policy of which
// ExecuteCommand is valid in which state (spec §4.7's transition table)
// lives here, not in the reactor, which only knows mechanism.
func (bl *Bootloader) handleCommand(cmd protocol.ExecuteCommandRequest) protocol.ExecuteCommandResponse {
	switch cmd.CommandID {
	case protocol.CommandBeginSoftwareUpdate:
		switch bl.state {
		case AppUpgradeInProgress:
			bl.reactor.CancelFetch()
			fallthrough
		case NoAppToBoot, BootDelay, BootCancelled:
			if !bl.beginUpdate(bl.lastUptime, cmd.FileServerNodeID, cmd.Parameter) {
				return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusFailure}
			}
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusSuccess}
		default:
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusBadState}
		}

	case protocol.CommandEmergencyStop:
		switch bl.state {
		case AppUpgradeInProgress:
			bl.reactor.CancelFetch()
			bl.state = NoAppToBoot
			bl.haveApp = false
			bl.reactor.SetAppInfo(appinfo.AppInfo{}, false)
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusSuccess}
		case BootDelay:
			bl.state = BootCancelled
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusSuccess}
		default:
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusBadState}
		}

	case protocol.CommandFactoryReset:
		bl.clearResume()
		if err := bl.requestReset(); err != nil {
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusFailure}
		}
		return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusSuccess}

	case protocol.CommandRestart:
		if bl.state == AppUpgradeInProgress {
			bl.storeResume(bl.updateServerNodeID, bl.updatePath)
		}
		if err := bl.requestReset(); err != nil {
			return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusFailure}
		}
		return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusSuccess}

	default:
		return protocol.ExecuteCommandResponse{Status: protocol.CommandStatusBadCommand}
	}
}

func (bl *Bootloader) requestReset() error {
	if bl.cfg.Reset == nil {
		return ErrResetUnavailable
	}
	bl.cfg.Reset.Request()
	return nil
}

func (bl *Bootloader) takeResume() (resumeRecord, bool) {
	if bl.cfg.VolatileRegion == nil {
		return resumeRecord{}, false
	}
	return volatile.New[resumeRecord](bl.cfg.VolatileRegion).Take()
}

func (bl *Bootloader) storeResume(serverNodeID uint16, path string) {
	if bl.cfg.VolatileRegion == nil {
		return
	}
	rec, ok := newResumeRecord(serverNodeID, path)
	if !ok {
		bl.logWarn("resume path too long to persist across reset", "path", path)
		return
	}
	volatile.New[resumeRecord](bl.cfg.VolatileRegion).Store(rec)
}

// clearResume drains any pending resume record without acting on it, so a
// FactoryReset cannot be followed by an unexpected update resumption.
func (bl *Bootloader) clearResume() {
	if bl.cfg.VolatileRegion == nil {
		return
	}
	volatile.New[resumeRecord](bl.cfg.VolatileRegion).Take()
}

// reactorState implements reactor.StateProvider from this state's
// Mode/Health (spec §4.7's state table); VSSC is always zero, since the
// spec assigns it no meaning beyond "vendor-specific."
func (bl *Bootloader) reactorState() (mode, health, vssc uint8) {
	m, h := bl.state.modeHealth()
	return uint8(m), uint8(h), 0
}

func (bl *Bootloader) logWarn(msg string, kv ...interface{}) {
	if bl.cfg.Logger != nil {
		bl.cfg.Logger.Warn(msg, kv...)
	}
}

func (bl *Bootloader) logError(msg string, kv ...interface{}) {
	if bl.cfg.Logger != nil {
		bl.cfg.Logger.Error(msg, kv...)
	}
}

type loggerAdapter struct{ l Logger }

func (a loggerAdapter) Debug(msg string, kv ...interface{}) { a.l.Debug(msg, kv...) }
