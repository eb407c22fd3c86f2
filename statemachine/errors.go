package statemachine

import "errors"

// ErrNotConfigured is returned by New when a required Config field is
// missing.
var ErrNotConfigured = errors.New("statemachine: ROM and WriteBlockSize are required")

// ErrResetUnavailable is returned by Restart/FactoryReset handling when
// Config.Reset is nil: the command cannot be honored on this host.
var ErrResetUnavailable = errors.New("statemachine: no ResetRequest configured")
