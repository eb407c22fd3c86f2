// Package hostlog adapts github.com/rs/zerolog to the core's minimal
// Logger interfaces (reactor.Logger, statemachine.Logger). It lives
// outside the core for the same reason cmd/kocherga-sim does: an embedded
// target cannot link zerolog, but the simulator and any other host-side
// harness are a normal Go program and should log the way the rest of the
// retrieval pack does, grounded on Satishg2606-lanmon's pkg/logger.
package hostlog
